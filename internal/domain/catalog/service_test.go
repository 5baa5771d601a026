package catalog

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"channelbot/internal/domain/content"
	"channelbot/internal/domain/purchase"
	"channelbot/internal/domain/user"
	"channelbot/internal/translate"
)

type testEnv struct {
	catalogs  *Service
	contents  *content.Service
	purchases *purchase.Service
	users     *user.Service
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&user.Profile{}, &content.Item{}, &content.File{}, &content.Translation{}, &purchase.Record{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	translator, err := translate.NewService(translate.LangEN)
	if err != nil {
		t.Fatalf("failed to build translator: %v", err)
	}
	contents := content.NewService(content.NewRepository(db), translator, nil, nil)
	purchases := purchase.NewService(db, contents, nil, nil)
	users := user.NewService(db, translate.LangEN)
	return &testEnv{
		catalogs:  NewService(contents, purchases, users, translator, nil),
		contents:  contents,
		purchases: purchases,
		users:     users,
	}
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func (e *testEnv) publish(t *testing.T, title, description string, price int64) string {
	t.Helper()
	ctx := context.Background()
	item, err := e.contents.BeginDraft(ctx, []content.FileSpec{
		{FileRef: "file-" + title, MediaKind: content.MediaVideo},
	})
	if err != nil {
		t.Fatalf("BeginDraft returned error: %v", err)
	}
	if _, err := e.contents.Configure(ctx, item.ID, content.ConfigureRequest{
		Title:       strPtr(title),
		Description: strPtr(description),
		PriceUnits:  int64Ptr(price),
	}); err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}
	if _, err := e.contents.Publish(ctx, item.ID); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	return item.ID
}

func (e *testEnv) registerUser(t *testing.T, id int64) {
	t.Helper()
	if _, err := e.users.Register(context.Background(), id, "viewer", "Viewer"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
}

func TestLockedEntryWithholdsPayload(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	env.registerUser(t, 101)
	env.publish(t, "Premium episode", "Exclusive video content", 50)

	feed, err := env.catalogs.RenderFeed(ctx, 101, 50, 0)
	if err != nil {
		t.Fatalf("RenderFeed returned error: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected one entry, got %d", len(feed))
	}

	entry := feed[0]
	if entry.Unlocked {
		t.Fatal("paid item should render locked without a purchase")
	}
	if entry.Action != ActionPurchase {
		t.Fatalf("expected action %q, got %q", ActionPurchase, entry.Action)
	}
	if entry.Description != "" || len(entry.Files) != 0 {
		t.Fatalf("locked entry leaked payload: %+v", entry)
	}
	if entry.Title != "Premium episode" || entry.PriceUnits != 50 {
		t.Fatalf("locked entry missing purchase facts: %+v", entry)
	}
}

func TestFreeItemOpenWithoutPurchase(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	env.registerUser(t, 101)
	env.publish(t, "Morning photo", "A free photo", 0)

	entryList, err := env.catalogs.RenderFeed(ctx, 101, 50, 0)
	if err != nil {
		t.Fatalf("RenderFeed returned error: %v", err)
	}
	entry := entryList[0]
	if !entry.Unlocked || entry.Action != ActionOpen {
		t.Fatalf("free item should render open: %+v", entry)
	}
	if entry.Description == "" || len(entry.Files) != 1 {
		t.Fatalf("open entry should carry payload: %+v", entry)
	}
}

func TestEntryUnlocksAfterGrant(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	env.registerUser(t, 101)
	id := env.publish(t, "Premium episode", "Exclusive video content", 50)

	if _, _, err := env.purchases.GrantUnlock(ctx, 101, id, 50, "ref-1"); err != nil {
		t.Fatalf("GrantUnlock returned error: %v", err)
	}

	entry, err := env.catalogs.RenderItem(ctx, 101, id)
	if err != nil {
		t.Fatalf("RenderItem returned error: %v", err)
	}
	if !entry.Unlocked || entry.Action != ActionOpen {
		t.Fatalf("purchased item should render open: %+v", entry)
	}
	if entry.Description == "" || len(entry.Files) != 1 {
		t.Fatalf("open entry should carry payload: %+v", entry)
	}

	// the other user still sees it locked
	env.registerUser(t, 102)
	other, err := env.catalogs.RenderItem(ctx, 102, id)
	if err != nil {
		t.Fatalf("RenderItem returned error: %v", err)
	}
	if other.Unlocked {
		t.Fatal("unlock leaked to a different user")
	}
}

func TestFeedOrderAndDeterminism(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	env.registerUser(t, 101)

	first := env.publish(t, "First", "First item", 10)
	second := env.publish(t, "Second", "Second item", 0)
	third := env.publish(t, "Third", "Third item", 30)

	feed, err := env.catalogs.RenderFeed(ctx, 101, 50, 0)
	if err != nil {
		t.Fatalf("RenderFeed returned error: %v", err)
	}
	got := []string{feed[0].ContentID, feed[1].ContentID, feed[2].ContentID}
	want := []string{first, second, third}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("feed order %v, want creation order %v", got, want)
	}

	again, err := env.catalogs.RenderFeed(ctx, 101, 50, 0)
	if err != nil {
		t.Fatalf("RenderFeed returned error: %v", err)
	}
	if !reflect.DeepEqual(feed, again) {
		t.Fatal("two renders of the same state differ")
	}
}

func TestDeletedItemLeavesFeed(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	env.registerUser(t, 101)
	id := env.publish(t, "Premium episode", "Exclusive video content", 50)

	if _, _, err := env.purchases.GrantUnlock(ctx, 101, id, 50, "ref-1"); err != nil {
		t.Fatalf("GrantUnlock returned error: %v", err)
	}
	if err := env.contents.Delete(ctx, id); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	feed, err := env.catalogs.RenderFeed(ctx, 101, 50, 0)
	if err != nil {
		t.Fatalf("RenderFeed returned error: %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("deleted item still in feed: %+v", feed)
	}
	if _, err := env.catalogs.RenderItem(ctx, 101, id); err == nil {
		t.Fatal("deleted item should not render")
	}

	// purchase history for the deleted item stays queryable
	recs, err := env.purchases.ListByContent(ctx, id)
	if err != nil || len(recs) != 1 {
		t.Fatalf("expected surviving purchase history, got %d records err=%v", len(recs), err)
	}
}

func TestDescriptionFollowsPreferredLanguage(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	env.registerUser(t, 101)
	id := env.publish(t, "Premium episode", "Exclusive video content", 0)

	if _, err := env.users.SetLanguage(ctx, 101, "es"); err != nil {
		t.Fatalf("SetLanguage returned error: %v", err)
	}

	entry, err := env.catalogs.RenderItem(ctx, 101, id)
	if err != nil {
		t.Fatalf("RenderItem returned error: %v", err)
	}
	if entry.Description != "Exclusivo video contenido" {
		t.Fatalf("expected spanish description, got %q", entry.Description)
	}
}

func TestPreviewCarriesNoPurchaseFacts(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	id := env.publish(t, "Premium episode", "Exclusive video content", 50)

	item, err := env.contents.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	preview := env.catalogs.Preview(item)
	if preview.Unlocked || preview.Action != ActionPurchase {
		t.Fatalf("paid preview should render locked: %+v", preview)
	}

	freeID := env.publish(t, "Morning photo", "A free photo", 0)
	freeItem, err := env.contents.Get(ctx, freeID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	freePreview := env.catalogs.Preview(freeItem)
	if !freePreview.Unlocked || freePreview.Action != ActionOpen {
		t.Fatalf("free preview should render open: %+v", freePreview)
	}
}
