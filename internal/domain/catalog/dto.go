package catalog

import (
	"time"

	"channelbot/internal/domain/content"
)

// Entry actions. A locked entry offers a purchase, an unlocked one opens.
const (
	ActionOpen     = "open"
	ActionPurchase = "purchase"
)

// FileView is the delivered shape of one file reference.
type FileView struct {
	FileRef   string            `json:"file_ref"`
	MediaKind content.MediaKind `json:"media_kind"`
}

// FeedEntry is one row of a user's rendered catalog. Locked entries carry
// title, price and the purchase action only; description and files stay
// withheld until an unlock record exists.
type FeedEntry struct {
	ContentID   string       `json:"content_id"`
	Kind        content.Kind `json:"kind"`
	Title       string       `json:"title"`
	PriceUnits  int64        `json:"price_units"`
	Unlocked    bool         `json:"unlocked"`
	Action      string       `json:"action"`
	Description string       `json:"description,omitempty"`
	Files       []FileView   `json:"files,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
