package types

import "time"

// TransactionStatus 交易状态
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionFinalized TransactionStatus = "finalized"
	TransactionFailed    TransactionStatus = "failed"
)

// Valid 是否为已知状态
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionConfirmed, TransactionFinalized, TransactionFailed:
		return true
	}
	return false
}

// TrackedTransaction 被跟踪的交易
type TrackedTransaction struct {
	ID        string            `json:"id"`
	Signature string            `json:"signature"`
	Cluster   string            `json:"cluster"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
