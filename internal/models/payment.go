package models

import "github.com/google/uuid"

type PaymentStatus int

const (
	PaymentStatusInitial PaymentStatus = iota
	PaymentStatusSubmitted
	PaymentStatusSuccessful
	PaymentStatusFailed
)

type PaymentFailure int

const (
	PaymentFailureNone PaymentFailure = iota
	PaymentFailureGeneric
	PaymentFailureNetwork
	PaymentFailureInsufficientFunds
)

// ArchivedPayment is the payment record behind a payment notification.
type ArchivedPayment struct {
	RowID               int64
	InteractionUniqueID uuid.UUID
	Direction           Direction
	Amount              string
	Fee                 string
	Note                string
	Status              PaymentStatus
	FailureReason       PaymentFailure
	Timestamp           uint64
	BlockIndex          uint64
	BlockTimestamp      uint64
	TransactionData     []byte
	Receipt             []byte
}
