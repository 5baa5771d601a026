package ingest

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"channelbot/internal/domain/content"
)

// CommitFunc receives a closed group exactly once, in arrival order.
type CommitFunc func(ctx context.Context, sessionID string, files []content.FileSpec) (itemID string, err error)

// Result reports what happened to one submitted file.
type Result struct {
	GroupKey string    `json:"group_key,omitempty"`
	Pending  bool      `json:"pending"`
	Files    int       `json:"files"`
	Deadline time.Time `json:"deadline,omitempty"`
	ItemID   string    `json:"item_id,omitempty"`
}

type pendingGroup struct {
	sessionID string
	groupKey  string
	files     []content.FileSpec
	deadline  time.Time
	timer     Timer
}

// Aggregator merges near-simultaneous uploads from one operator session into
// a single pending unit. The deadline is fixed at first arrival plus the
// window; later files never extend it.
type Aggregator struct {
	mu     sync.Mutex
	groups map[string]*pendingGroup

	window time.Duration
	clock  Clock
	commit CommitFunc
	logger *zap.Logger
}

func NewAggregator(window time.Duration, clock Clock, commit CommitFunc, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		groups: make(map[string]*pendingGroup),
		window: window,
		clock:  clock,
		commit: commit,
		logger: logger,
	}
}

// Submit adds one file. With an empty groupKey the file is a one-shot group
// of size one and commits immediately. Once accepted a file is never dropped:
// an abandoned group still commits whatever arrived when its window closes.
func (a *Aggregator) Submit(ctx context.Context, sessionID string, file content.FileSpec, groupKey string) (*Result, error) {
	if groupKey == "" {
		itemID, err := a.commit(ctx, sessionID, []content.FileSpec{file})
		if err != nil {
			return nil, err
		}
		return &Result{Files: 1, ItemID: itemID}, nil
	}

	key := sessionID + "|" + groupKey

	a.mu.Lock()
	defer a.mu.Unlock()

	if g, ok := a.groups[key]; ok {
		g.files = append(g.files, file)
		return &Result{GroupKey: groupKey, Pending: true, Files: len(g.files), Deadline: g.deadline}, nil
	}

	g := &pendingGroup{
		sessionID: sessionID,
		groupKey:  groupKey,
		files:     []content.FileSpec{file},
		deadline:  a.clock.Now().Add(a.window),
	}
	g.timer = a.clock.AfterFunc(a.window, func() { a.fire(key) })
	a.groups[key] = g

	return &Result{GroupKey: groupKey, Pending: true, Files: 1, Deadline: g.deadline}, nil
}

// Cancel drops a pending group before its window closes.
func (a *Aggregator) Cancel(sessionID, groupKey string) bool {
	a.mu.Lock()
	g, ok := a.groups[sessionID+"|"+groupKey]
	if ok {
		delete(a.groups, sessionID+"|"+groupKey)
	}
	a.mu.Unlock()

	if !ok {
		return false
	}
	g.timer.Stop()
	a.logger.Info("pending group cancelled",
		zap.String("session_id", sessionID),
		zap.String("group_key", groupKey),
		zap.Int("files", len(g.files)))
	return true
}

// PendingCount reports how many files a pending group holds.
func (a *Aggregator) PendingCount(sessionID, groupKey string) (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, ok := a.groups[sessionID+"|"+groupKey]
	if !ok {
		return 0, false
	}
	return len(g.files), true
}

// fire closes a group. Removal under the lock guarantees the commit runs at
// most once per group and never races a concurrent Submit append.
func (a *Aggregator) fire(key string) {
	a.mu.Lock()
	g, ok := a.groups[key]
	if ok {
		delete(a.groups, key)
	}
	a.mu.Unlock()

	if !ok || len(g.files) == 0 {
		return
	}

	itemID, err := a.commit(context.Background(), g.sessionID, g.files)
	if err != nil {
		a.logger.Error("group commit failed",
			zap.String("session_id", g.sessionID),
			zap.String("group_key", g.groupKey),
			zap.Int("files", len(g.files)),
			zap.Error(err))
		return
	}
	a.logger.Info("group committed",
		zap.String("session_id", g.sessionID),
		zap.String("group_key", g.groupKey),
		zap.Int("files", len(g.files)),
		zap.String("content_id", itemID))
}
