package purchase

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is one durable unlock grant. Its existence is the unlock fact:
// free content never gets a row, and later price edits never touch it.
type Record struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	UserID     int64     `gorm:"column:user_id;not null;uniqueIndex:idx_purchases_user_content" json:"user_id"`
	ContentID  string    `gorm:"column:content_id;not null;uniqueIndex:idx_purchases_user_content;index" json:"content_id"`
	AmountPaid int64     `gorm:"column:amount_paid;not null" json:"amount_paid"`
	PaymentRef string    `gorm:"column:payment_ref;not null;uniqueIndex" json:"payment_ref"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Record) TableName() string { return "purchases" }

func (r *Record) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
