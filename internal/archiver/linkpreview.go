package archiver

import (
	"strings"

	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

func archiveLinkPreview(p *models.LinkPreview, image *wire.FilePointer) *wire.LinkPreview {
	return &wire.LinkPreview{
		URL:         p.URL,
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
		Image:       image,
	}
}

// restoreLinkPreview restores the first preview if its URL occurs in body.
// Rejected previews are dropped with a recoverable error.
func restoreLinkPreview(previews []*wire.LinkPreview, body string, id ChatItemID) (*models.LinkPreview, *wire.FilePointer, restoreErrors) {
	if len(previews) == 0 {
		return nil, nil, nil
	}
	p := previews[0]
	switch {
	case p.URL == "":
		return nil, nil, restoreErrors{invalidProtoData(ProtoDataLinkPreviewEmptyURL, id)}
	case !strings.Contains(body, p.URL):
		return nil, nil, restoreErrors{invalidProtoData(ProtoDataLinkPreviewURLNotInBody, id)}
	}
	return &models.LinkPreview{
		URL:         p.URL,
		Title:       p.Title,
		Description: p.Description,
		Date:        p.Date,
	}, p.Image, nil
}
