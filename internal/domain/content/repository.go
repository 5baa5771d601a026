package content

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"channelbot/internal/translate"
)

type Repository interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id string) (*Item, error)
	UpdateFields(ctx context.Context, id string, updates map[string]any) error
	UpdateStatus(ctx context.Context, id string, status Status, publishedAt *time.Time) error
	ReplaceTranslations(ctx context.Context, id string, texts map[translate.Lang]string) error
	ListPublished(ctx context.Context, limit, offset int) ([]Item, error)
	ListAll(ctx context.Context) ([]Item, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Get(ctx context.Context, id string) (*Item, error) {
	var item Item
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Translations").
		Where("id = ?", id).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateFields(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&Item{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status, publishedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if publishedAt != nil {
		updates["published_at"] = *publishedAt
	}
	return r.UpdateFields(ctx, id, updates)
}

// ReplaceTranslations swaps the stored variants in one transaction so a
// render never observes a half-replaced set.
func (r *repository) ReplaceTranslations(ctx context.Context, id string, texts map[translate.Lang]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&Translation{}).Error; err != nil {
			return err
		}
		for lang, text := range texts {
			if err := tx.Create(&Translation{ItemID: id, Lang: lang, Text: text}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ListPublished(ctx context.Context, limit, offset int) ([]Item, error) {
	var items []Item
	q := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Translations").
		Where("status = ?", StatusPublished).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *repository) ListAll(ctx context.Context) ([]Item, error) {
	var items []Item
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}
