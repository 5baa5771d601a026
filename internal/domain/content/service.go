package content

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"channelbot/internal/metrics"
	"channelbot/internal/translate"
)

// FileSpec describes one accepted file reference before it becomes a row.
type FileSpec struct {
	FileRef   string
	MediaKind MediaKind
}

// ConfigureRequest carries operator-set fields. Any subset may arrive in any
// order; each field stays overwritable until publish and editable after.
type ConfigureRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PriceUnits  *int64  `json:"price_units"`
}

// Service is the content lifecycle: draft -> configuring -> published ->
// deleted. Mutations on one item are serialized on a per-id mutex.
type Service struct {
	repo       Repository
	translator *translate.Service
	metrics    *metrics.Metrics
	logger     *zap.Logger

	locks sync.Map // item id -> *sync.Mutex
}

func NewService(repo Repository, translator *translate.Service, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, translator: translator, metrics: m, logger: logger}
}

// BeginDraft turns an aggregator commit into a stored item. The draft is
// immediately open for configuration.
func (s *Service) BeginDraft(ctx context.Context, files []FileSpec) (*Item, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	kind := KindSingle
	if len(files) > 1 {
		kind = KindGroup
	}

	item := &Item{Kind: kind, Status: StatusDraft}
	for i, f := range files {
		item.Files = append(item.Files, File{Position: i, FileRef: f.FileRef, MediaKind: f.MediaKind})
	}
	// committing is what opens the configuration step
	item.Status = StatusConfiguring

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("content draft created",
		zap.String("content_id", item.ID),
		zap.String("kind", string(item.Kind)),
		zap.Int("files", len(item.Files)))
	return item, nil
}

// Configure applies operator-set fields. Before publish they fill the
// required-fields checklist; after publish they are in-place edits.
func (s *Service) Configure(ctx context.Context, id string, req ConfigureRequest) (*Item, error) {
	unlock := s.lock(id)
	defer unlock()

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == StatusDeleted {
		return nil, ErrNotFound
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PriceUnits != nil {
		if *req.PriceUnits < 0 {
			return nil, ErrNegativePrice
		}
		updates["price_units"] = *req.PriceUnits
	}
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}

	// description edits on a live item refresh the stored variants
	if req.Description != nil && item.Status == StatusPublished {
		if err := s.repo.ReplaceTranslations(ctx, id, s.translator.Precompute(*req.Description)); err != nil {
			return nil, err
		}
	}

	return s.repo.Get(ctx, id)
}

// Publish makes the item visible to users. It refuses, naming the field,
// while any of title, description or price is unset. Publishing an already
// published item is a no-op success.
func (s *Service) Publish(ctx context.Context, id string) (*Item, error) {
	unlock := s.lock(id)
	defer unlock()

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch item.Status {
	case StatusPublished:
		return item, nil
	case StatusDeleted:
		return nil, ErrNotFound
	}

	if missing := missingField(item); missing != "" {
		return nil, &ValidationError{Field: missing}
	}
	if item.Price() < 0 {
		return nil, ErrNegativePrice
	}

	if err := s.repo.ReplaceTranslations(ctx, id, s.translator.Precompute(item.Description)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, StatusPublished, &now); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ContentsPublished.Inc()
	}
	s.logger.Info("content published",
		zap.String("content_id", id),
		zap.Int64("price_units", item.Price()))

	return s.repo.Get(ctx, id)
}

// Delete soft-removes the item. Deleting twice is a no-op success; purchase
// records referencing the item stay queryable.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.Status == StatusDeleted {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusDeleted, nil); err != nil {
		return err
	}
	s.logger.Info("content deleted", zap.String("content_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.repo.Get(ctx, id)
}

// GetPublished resolves an id only while it is live in the catalog.
func (s *Service) GetPublished(ctx context.Context, id string) (*Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusPublished {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]Item, error) {
	return s.repo.ListPublished(ctx, limit, offset)
}

// ListAll is the operator view: drafts and deleted items included.
func (s *Service) ListAll(ctx context.Context) ([]Item, error) {
	return s.repo.ListAll(ctx)
}

func missingField(item *Item) string {
	switch {
	case item.Title == "":
		return "title"
	case item.Description == "":
		return "description"
	case item.PriceUnits == nil:
		return "price"
	}
	return ""
}

func (s *Service) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
