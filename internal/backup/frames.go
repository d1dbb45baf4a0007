// Package backup drives whole-file export and import: it walks the local
// store in frame order, hands chat items to the archivers and reports what
// could not be carried across.
package backup

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/chatbackup/internal/archiver"
	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
	"github.com/google/uuid"
)

var (
	// ErrUnsupportedVersion is returned for a backup header this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported backup version")

	errEmptyRecipient = errors.New("recipient frame has no destination")
	errUnknownChat    = errors.New("chat references unknown recipient")
)

// selfFirst orders recipients so that the local account is emitted first.
func selfFirst(rs []*models.Recipient) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Kind == models.RecipientKindSelf && rs[j].Kind != models.RecipientKindSelf
	})
}

func recipientFrame(id archiver.RecipientID, r *models.Recipient) *wire.Frame {
	out := &wire.Recipient{ID: uint64(id)}
	switch r.Kind {
	case models.RecipientKindSelf:
		out.Self = &wire.Self{}
	case models.RecipientKindGroup:
		out.Group = &wire.Group{MasterKey: r.GroupMasterKey, Title: r.Name}
	case models.RecipientKindDistributionList:
		out.DistributionList = &wire.DistributionList{Name: r.Name}
	case models.RecipientKindReleaseNotes:
		out.ReleaseNotes = &wire.ReleaseNotes{}
	default:
		c := &wire.Contact{
			E164:              r.Address.E164Number(),
			ProfileGivenName:  r.ProfileGivenName,
			ProfileFamilyName: r.ProfileFamilyName,
		}
		if r.Address.Aci != uuid.Nil {
			aci := r.Address.Aci
			c.Aci = aci[:]
		}
		out.Contact = c
	}
	return &wire.Frame{Recipient: out}
}

// localRecipient converts a recipient frame. The local account is addressed
// by localAci.
func localRecipient(r *wire.Recipient, localAci uuid.UUID) (*models.Recipient, error) {
	switch {
	case r.Self != nil:
		return &models.Recipient{Kind: models.RecipientKindSelf, Address: models.NewAciAddress(localAci)}, nil
	case r.Contact != nil:
		addr := models.Address{E164: models.E164FromNumber(r.Contact.E164)}
		if len(r.Contact.Aci) > 0 {
			aci, err := uuid.FromBytes(r.Contact.Aci)
			if err != nil {
				return nil, fmt.Errorf("contact aci: %w", err)
			}
			addr.Aci = aci
		}
		if !addr.IsValid() {
			return nil, fmt.Errorf("contact %d: %w", r.ID, common.ErrorInvalidAddress)
		}
		return &models.Recipient{
			Kind:              models.RecipientKindContact,
			Address:           addr,
			ProfileGivenName:  r.Contact.ProfileGivenName,
			ProfileFamilyName: r.Contact.ProfileFamilyName,
		}, nil
	case r.Group != nil:
		return &models.Recipient{Kind: models.RecipientKindGroup, GroupMasterKey: r.Group.MasterKey, Name: r.Group.Title}, nil
	case r.DistributionList != nil:
		return &models.Recipient{Kind: models.RecipientKindDistributionList, Name: r.DistributionList.Name}, nil
	case r.ReleaseNotes != nil:
		return &models.Recipient{Kind: models.RecipientKindReleaseNotes}, nil
	default:
		return nil, errEmptyRecipient
	}
}
