package models

type OutgoingStatus int

const (
	OutgoingStatusSending OutgoingStatus = iota
	OutgoingStatusPending
	OutgoingStatusSent
	OutgoingStatusSkipped
	OutgoingStatusFailed
)

func (s OutgoingStatus) String() string {
	switch s {
	case OutgoingStatusSending:
		return "sending"
	case OutgoingStatusPending:
		return "pending"
	case OutgoingStatusSent:
		return "sent"
	case OutgoingStatusSkipped:
		return "skipped"
	case OutgoingStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Internal send failure codes. They belong to the delivery subsystem and are
// not stable across versions, so they are never exported as-is.
const (
	ErrorCodeGenericFailure    = 31
	ErrorCodeNetworkFailure    = 1001
	ErrorCodeRequestTimeout    = 1002
	ErrorCodeUntrustedIdentity = 777427
)

// RecipientState tracks delivery of an outgoing message to one recipient.
// Zero timestamps mean "not yet".
type RecipientState struct {
	Address               Address
	Status                OutgoingStatus
	DeliveryTimestamp     uint64
	ReadTimestamp         uint64
	ViewedTimestamp       uint64
	WasSentBySealedSender bool
	// ErrorCode is meaningful for OutgoingStatusFailed only; 0 means none.
	ErrorCode int
}
