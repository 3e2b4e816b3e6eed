package model

import "time"

// Item represents a listed object that can be traded for another item.
type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Status      string    `json:"status"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Images      []string  `json:"images,omitempty"`
	PostedAt    time.Time `json:"posted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasLocation reports whether the item carries both coordinates.
func (i *Item) HasLocation() bool {
	return i.Latitude != nil && i.Longitude != nil
}

// Item conditions.
const (
	ConditionNew  = "NEW"
	ConditionGood = "GOOD"
	ConditionFair = "FAIR"
	ConditionPoor = "POOR"
)

// Item statuses.
const (
	ItemStatusAvailable = "AVAILABLE"
	ItemStatusReserved  = "RESERVED"
	ItemStatusSwapped   = "SWAPPED"
	ItemStatusRemoved   = "REMOVED"
)

// MaxTitleLength bounds item titles.
const MaxTitleLength = 120

// ValidCondition reports whether c is a known item condition.
func ValidCondition(c string) bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusAvailable, ItemStatusReserved, ItemStatusSwapped, ItemStatusRemoved:
		return true
	}
	return false
}

// itemTransitions is the complete set of legal item status changes.
// SWAPPED and REMOVED are terminal.
var itemTransitions = map[string][]string{
	ItemStatusAvailable: {ItemStatusReserved, ItemStatusSwapped, ItemStatusRemoved},
	ItemStatusReserved:  {ItemStatusSwapped, ItemStatusAvailable},
}

// CanTransitionItem reports whether an item may move from one status to another.
func CanTransitionItem(from, to string) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
