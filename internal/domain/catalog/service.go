package catalog

import (
	"context"
	"fmt"

	"channelbot/internal/domain/content"
	"channelbot/internal/domain/user"
	"channelbot/internal/metrics"
	"channelbot/internal/translate"
)

// UnlockChecker is the slice of the purchase engine the renderer reads.
type UnlockChecker interface {
	UnlockedSet(ctx context.Context, userID int64) (map[string]bool, error)
	HasUnlocked(ctx context.Context, userID int64, contentID string) (bool, error)
}

// Service composes the per-user feed: every published item, oldest first,
// locked or unlocked by the user's purchase facts. Renders are read-only and
// deterministic for a fixed store state.
type Service struct {
	contents   *content.Service
	unlocks    UnlockChecker
	users      *user.Service
	translator *translate.Service
	metrics    *metrics.Metrics
}

func NewService(contents *content.Service, unlocks UnlockChecker, users *user.Service, translator *translate.Service, m *metrics.Metrics) *Service {
	return &Service{contents: contents, unlocks: unlocks, users: users, translator: translator, metrics: m}
}

// RenderFeed streams the catalog for one user, ascending by creation order.
func (s *Service) RenderFeed(ctx context.Context, userID int64, limit, offset int) ([]FeedEntry, error) {
	lang := s.users.PreferredLang(ctx, userID)

	items, err := s.contents.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.unlocks.UnlockedSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]FeedEntry, 0, len(items))
	for i := range items {
		item := &items[i]
		entries = append(entries, s.entry(item, item.Free() || unlocked[item.ID], lang))
	}

	if s.metrics != nil {
		s.metrics.FeedRenders.Inc()
	}
	return entries, nil
}

// RenderItem renders a single published item for one user.
func (s *Service) RenderItem(ctx context.Context, userID int64, contentID string) (*FeedEntry, error) {
	item, err := s.contents.GetPublished(ctx, contentID)
	if err != nil {
		return nil, err
	}

	open := item.Free()
	if !open {
		open, err = s.unlocks.HasUnlocked(ctx, userID, contentID)
		if err != nil {
			return nil, err
		}
	}

	e := s.entry(item, open, s.users.PreferredLang(ctx, userID))
	return &e, nil
}

// Preview renders an item with no purchase facts, in the base language.
// This is the shape broadcast to all users when an item goes live: paid
// items appear locked, free ones open.
func (s *Service) Preview(item *content.Item) FeedEntry {
	return s.entry(item, item.Free(), s.translator.BaseLang())
}

func (s *Service) entry(item *content.Item, unlocked bool, lang translate.Lang) FeedEntry {
	e := FeedEntry{
		ContentID:  item.ID,
		Kind:       item.Kind,
		Title:      item.Title,
		PriceUnits: item.Price(),
		Unlocked:   unlocked,
		Action:     ActionPurchase,
		CreatedAt:  item.CreatedAt,
	}
	if !unlocked {
		return e
	}

	e.Action = ActionOpen
	e.Description = s.translator.Describe(describeKey(item), item.Description, item.TranslationMap(), lang)
	for _, f := range item.Files {
		e.Files = append(e.Files, FileView{FileRef: f.FileRef, MediaKind: f.MediaKind})
	}
	return e
}

// describeKey changes whenever the item text changes, keeping the derived
// description cache coherent across edits.
func describeKey(item *content.Item) string {
	return fmt.Sprintf("%s@%d", item.ID, item.UpdatedAt.UnixNano())
}
