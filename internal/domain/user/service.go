package user

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"channelbot/internal/translate"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrUnsupportedLang = errors.New("unsupported language code")
)

type Service struct {
	db       *gorm.DB
	baseLang translate.Lang
}

func NewService(db *gorm.DB, baseLang translate.Lang) *Service {
	return &Service{db: db, baseLang: baseLang}
}

// Register upserts a profile on first contact. Re-registration refreshes the
// contact fields but leaves the chosen language alone.
func (s *Service) Register(ctx context.Context, id int64, username, firstName string) (*Profile, error) {
	p := &Profile{ID: id, Username: username, FirstName: firstName, Lang: s.baseLang}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name"}),
	}).Create(p).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) SetLanguage(ctx context.Context, id int64, raw string) (*Profile, error) {
	lang := translate.Lang(raw)
	if !translate.IsSupported(lang) {
		return nil, ErrUnsupportedLang
	}

	res := s.db.WithContext(ctx).Model(&Profile{}).Where("id = ?", id).Update("lang", lang)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Profile, error) {
	var p Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PreferredLang resolves a user's language, falling back to the base
// language for unknown users.
func (s *Service) PreferredLang(ctx context.Context, id int64) translate.Lang {
	p, err := s.Get(ctx, id)
	if err != nil {
		return s.baseLang
	}
	return p.Lang
}
