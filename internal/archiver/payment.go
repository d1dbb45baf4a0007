package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

var paymentFailureToWire = map[models.PaymentFailure]wire.PaymentFailureReason{
	models.PaymentFailureNone:              wire.PaymentFailureGeneric,
	models.PaymentFailureGeneric:           wire.PaymentFailureGeneric,
	models.PaymentFailureNetwork:           wire.PaymentFailureNetwork,
	models.PaymentFailureInsufficientFunds: wire.PaymentFailureInsufficientFunds,
}

var paymentStatusToWire = map[models.PaymentStatus]wire.PaymentStatus{
	models.PaymentStatusInitial:    wire.PaymentStatusInitial,
	models.PaymentStatusSubmitted:  wire.PaymentStatusSubmitted,
	models.PaymentStatusSuccessful: wire.PaymentStatusSuccessful,
}

// archivePayment reads the record behind a payment message. A record
// embedded in the message wins over the store.
func (a *ContentArchiver) archivePayment(ctx context.Context, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.PaymentNotification, *ArchiveFrameError] {
	record := msg.Payment
	if record == nil {
		var err error
		record, err = a.payments.ByInteractionUniqueID(ctx, tx, msg.UniqueID)
		if err != nil {
			e := newArchiveError(ArchiveErrorFetchFailed, msg.UniqueID)
			e.Cause = err
			return result.Failure[*wire.PaymentNotification](archiveErrors{e})
		}
	}
	if record == nil {
		return archiveFailure[*wire.PaymentNotification](ArchiveErrorMissingPaymentInformation, msg.UniqueID)
	}
	return result.Success[*wire.PaymentNotification, *ArchiveFrameError](paymentNotification(record))
}

func paymentNotification(p *models.ArchivedPayment) *wire.PaymentNotification {
	out := &wire.PaymentNotification{
		AmountMob: p.Amount,
		FeeMob:    p.Fee,
		Note:      p.Note,
	}
	if p.Status == models.PaymentStatusFailed {
		out.TransactionDetails = &wire.PaymentTransactionDetails{
			FailedTransaction: &wire.PaymentFailedTransaction{Reason: paymentFailureToWire[p.FailureReason]},
		}
		return out
	}
	out.TransactionDetails = &wire.PaymentTransactionDetails{
		Transaction: &wire.PaymentTransaction{
			Status:          paymentStatusToWire[p.Status],
			Timestamp:       p.Timestamp,
			BlockIndex:      p.BlockIndex,
			BlockTimestamp:  p.BlockTimestamp,
			TransactionData: p.TransactionData,
			Receipt:         p.Receipt,
		},
	}
	return out
}

// restorePayment builds the record inserted downstream of a payment message.
// A missing amount is recorded but does not drop the message.
func restorePayment(n *wire.PaymentNotification, direction models.Direction, id ChatItemID) result.Result[*models.ArchivedPayment, *RestoreFrameError] {
	var errs restoreErrors
	p := &models.ArchivedPayment{
		Direction: direction,
		Amount:    n.AmountMob,
		Fee:       n.FeeMob,
		Note:      n.Note,
		Status:    models.PaymentStatusInitial,
	}
	if n.AmountMob == "" {
		errs = append(errs, invalidProtoData(ProtoDataPaymentNotificationMissingAmount, id))
	}

	if d := n.TransactionDetails; d != nil {
		switch {
		case d.FailedTransaction != nil:
			p.Status = models.PaymentStatusFailed
			switch d.FailedTransaction.Reason {
			case wire.PaymentFailureNetwork:
				p.FailureReason = models.PaymentFailureNetwork
			case wire.PaymentFailureInsufficientFunds:
				p.FailureReason = models.PaymentFailureInsufficientFunds
			default:
				p.FailureReason = models.PaymentFailureGeneric
			}
		case d.Transaction != nil:
			t := d.Transaction
			switch t.Status {
			case wire.PaymentStatusSubmitted:
				p.Status = models.PaymentStatusSubmitted
			case wire.PaymentStatusSuccessful:
				p.Status = models.PaymentStatusSuccessful
			}
			p.Timestamp = t.Timestamp
			p.BlockIndex = t.BlockIndex
			p.BlockTimestamp = t.BlockTimestamp
			p.TransactionData = t.TransactionData
			p.Receipt = t.Receipt
		}
	}
	return result.Fold(p, errs)
}
