package model

import "time"

// TradeRequest is a proposal to exchange the requester's offered item for
// the requested item owned by someone else.
type TradeRequest struct {
	ID              int64      `json:"id"`
	RequestedItemID int64      `json:"requested_item_id"`
	OfferedItemID   int64      `json:"offered_item_id"`
	RequesterID     int64      `json:"requester_id"`
	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requested_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`

	// Joined fields (not always populated).
	RequestedItemTitle string `json:"requested_item_title,omitempty"`
	OfferedItemTitle   string `json:"offered_item_title,omitempty"`
	RecipientID        int64  `json:"recipient_id,omitempty"`
}

// Trade request statuses.
const (
	RequestStatusPending   = "PENDING"
	RequestStatusAccepted  = "ACCEPTED"
	RequestStatusRejected  = "REJECTED"
	RequestStatusCancelled = "CANCELLED"
)

// Trade is the exchange materialized from an accepted request.
type Trade struct {
	ID              int64      `json:"id"`
	TradeRequestID  int64      `json:"trade_request_id"`
	RequestedItemID int64      `json:"requested_item_id"`
	OfferedItemID   int64      `json:"offered_item_id"`
	RequesterID     int64      `json:"requester_id"`
	OwnerID         int64      `json:"owner_id"`
	Status          string     `json:"status"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Trade statuses.
const (
	TradeStatusPending   = "PENDING"
	TradeStatusCompleted = "COMPLETED"
	TradeStatusFailed    = "FAILED"
	TradeStatusCancelled = "CANCELLED"
)

// ValidTradeStatus reports whether s is a known trade status.
func ValidTradeStatus(s string) bool {
	switch s {
	case TradeStatusPending, TradeStatusCompleted, TradeStatusFailed, TradeStatusCancelled:
		return true
	}
	return false
}

// IsParticipant reports whether userID is one of the two parties.
func (t *Trade) IsParticipant(userID int64) bool {
	return userID == t.RequesterID || userID == t.OwnerID
}

// ItemIDs returns both item ids, requested item first.
func (t *Trade) ItemIDs() []int64 {
	return []int64{t.RequestedItemID, t.OfferedItemID}
}
