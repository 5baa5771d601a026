package purchase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"channelbot/internal/domain/content"
	"channelbot/internal/metrics"
)

var (
	ErrUnknownContent = errors.New("unknown content")
	ErrInvalidAmount  = errors.New("amount must not be negative")
	ErrEmptyRef       = errors.New("payment ref is empty")
)

// UnlockResult tells the caller whether a grant was new.
type UnlockResult string

const (
	Granted         UnlockResult = "granted"
	AlreadyUnlocked UnlockResult = "already_unlocked"
)

// ContentReader is the slice of the content service the engine needs.
type ContentReader interface {
	GetPublished(ctx context.Context, id string) (*content.Item, error)
}

// Service turns completed payment events into unlock records, idempotently.
type Service struct {
	db       *gorm.DB
	contents ContentReader
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewService(db *gorm.DB, contents ContentReader, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, contents: contents, metrics: m, logger: logger}
}

// GrantUnlock records that userID paid for contentID. Duplicate payment
// notifications, whether by payment ref or by (user, content) pair, return
// AlreadyUnlocked without a second row. The unique indexes back the
// insert-if-absent, so concurrent duplicates also collapse to one record.
func (s *Service) GrantUnlock(ctx context.Context, userID int64, contentID string, amountPaid int64, paymentRef string) (UnlockResult, *Record, error) {
	if paymentRef == "" {
		return "", nil, ErrEmptyRef
	}
	if amountPaid < 0 {
		return "", nil, ErrInvalidAmount
	}

	// duplicate notifications resolve first: an existing record answers
	// AlreadyUnlocked even if the item has since been deleted
	if existing, err := s.getByUserContent(ctx, userID, contentID); err == nil {
		return AlreadyUnlocked, existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, err
	}
	if existing, err := s.getByPaymentRef(ctx, paymentRef); err == nil {
		return AlreadyUnlocked, existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, err
	}

	if _, err := s.contents.GetPublished(ctx, contentID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return "", nil, ErrUnknownContent
		}
		return "", nil, err
	}

	rec := &Record{UserID: userID, ContentID: contentID, AmountPaid: amountPaid, PaymentRef: paymentRef}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			// lost the race to a concurrent duplicate; that grant stands
			if existing, gerr := s.getByUserContent(ctx, userID, contentID); gerr == nil {
				return AlreadyUnlocked, existing, nil
			}
			if existing, gerr := s.getByPaymentRef(ctx, paymentRef); gerr == nil {
				return AlreadyUnlocked, existing, nil
			}
		}
		return "", nil, err
	}

	if s.metrics != nil {
		s.metrics.Purchases.Inc()
		s.metrics.RevenueUnits.Add(float64(amountPaid))
	}
	s.logger.Info("unlock granted",
		zap.Int64("user_id", userID),
		zap.String("content_id", contentID),
		zap.Int64("amount_paid", amountPaid),
		zap.String("payment_ref", paymentRef))

	return Granted, rec, nil
}

// HasUnlocked reports whether a record exists for (userID, contentID).
func (s *Service) HasUnlocked(ctx context.Context, userID int64, contentID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Record{}).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Count(&n).Error
	return n > 0, err
}

// UnlockedSet returns every content id the user holds a record for.
func (s *Service) UnlockedSet(ctx context.Context, userID int64) (map[string]bool, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&Record{}).
		Where("user_id = ?", userID).
		Pluck("content_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Record, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Find(&recs).Error
	return recs, err
}

// ListByContent queries purchase history for one item. It works for deleted
// content too: history outlives the catalog entry.
func (s *Service) ListByContent(ctx context.Context, contentID string) ([]Record, error) {
	var recs []Record
	err := s.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at ASC").Find(&recs).Error
	return recs, err
}

// Totals derives the counters from the table itself.
func (s *Service) Totals(ctx context.Context) (count int64, revenue int64, err error) {
	if err = s.db.WithContext(ctx).Model(&Record{}).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	var sum struct{ Total int64 }
	err = s.db.WithContext(ctx).Model(&Record{}).
		Select("COALESCE(SUM(amount_paid), 0) AS total").
		Scan(&sum).Error
	return count, sum.Total, err
}

func (s *Service) getByUserContent(ctx context.Context, userID int64, contentID string) (*Record, error) {
	var rec Record
	if err := s.db.WithContext(ctx).Where("user_id = ? AND content_id = ?", userID, contentID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) getByPaymentRef(ctx context.Context, ref string) (*Record, error) {
	var rec Record
	if err := s.db.WithContext(ctx).Where("payment_ref = ?", ref).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
