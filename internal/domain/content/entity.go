package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"channelbot/internal/translate"
)

// Status of a content item
type Status string

const (
	StatusDraft       Status = "draft"       // files captured, nothing configured yet
	StatusConfiguring Status = "configuring" // operator is filling title/description/price
	StatusPublished   Status = "published"   // visible in the catalog
	StatusDeleted     Status = "deleted"     // soft-removed, purchase history intact
)

// Kind of a content item
type Kind string

const (
	KindSingle Kind = "single"
	KindGroup  Kind = "group"
)

// MediaKind of one file reference
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

// Item is one priced unit of the channel feed. A group item carries several
// file references that share one title, description and price.
type Item struct {
	ID          string  `gorm:"column:id;primaryKey" json:"id"`
	Kind        Kind    `gorm:"column:kind;type:varchar(16);not null" json:"kind"`
	Title       string  `gorm:"column:title" json:"title"`
	Description string  `gorm:"column:description" json:"description"`
	PriceUnits  *int64  `gorm:"column:price_units" json:"price_units,omitempty"`
	Status      Status  `gorm:"column:status;type:varchar(16);not null;index" json:"status"`

	Files        []File        `gorm:"foreignKey:ItemID;references:ID" json:"files"`
	Translations []Translation `gorm:"foreignKey:ItemID;references:ID" json:"translations,omitempty"`

	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
}

func (Item) TableName() string { return "content_items" }

func (i *Item) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// Price returns the configured price, 0 while unset.
func (i *Item) Price() int64 {
	if i.PriceUnits == nil {
		return 0
	}
	return *i.PriceUnits
}

// Free reports whether the item unlocks without a purchase.
func (i *Item) Free() bool { return i.Price() == 0 }

// TranslationMap flattens the child rows into a lookup map.
func (i *Item) TranslationMap() map[translate.Lang]string {
	m := make(map[translate.Lang]string, len(i.Translations))
	for _, t := range i.Translations {
		m[t.Lang] = t.Text
	}
	return m
}

// File is one ordered file reference of an item. FileRef is an opaque
// platform identifier, never raw bytes.
type File struct {
	ItemID    string    `gorm:"column:item_id;primaryKey" json:"-"`
	Position  int       `gorm:"column:position;primaryKey" json:"position"`
	FileRef   string    `gorm:"column:file_ref;not null" json:"file_ref"`
	MediaKind MediaKind `gorm:"column:media_kind;type:varchar(16);not null" json:"media_kind"`
}

func (File) TableName() string { return "content_files" }

// Translation is one stored per-language description variant.
type Translation struct {
	ItemID string         `gorm:"column:item_id;primaryKey" json:"-"`
	Lang   translate.Lang `gorm:"column:lang;type:varchar(8);primaryKey" json:"lang"`
	Text   string         `gorm:"column:text;not null" json:"text"`
}

func (Translation) TableName() string { return "content_translations" }
