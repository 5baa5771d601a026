package main

import (
	"context"
	"log"
	"os"

	"channelbot/internal/database"
	"channelbot/internal/domain/content"
	"channelbot/internal/domain/purchase"
	"channelbot/internal/domain/user"
	"channelbot/internal/translate"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "channelbot.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM purchases")
	db.Exec("DELETE FROM content_translations")
	db.Exec("DELETE FROM content_files")
	db.Exec("DELETE FROM content_items")
	db.Exec("DELETE FROM users")

	ctx := context.Background()

	translator, err := translate.NewService(translate.LangEN)
	if err != nil {
		log.Fatal(err)
	}
	contents := content.NewService(content.NewRepository(db), translator, nil, nil)
	users := user.NewService(db, translator.BaseLang())
	purchases := purchase.NewService(db, contents, nil, nil)

	for _, u := range []struct {
		id    int64
		name  string
		first string
	}{
		{1001, "alice_demo", "Alice"},
		{1002, "bruno_demo", "Bruno"},
	} {
		if _, err := users.Register(ctx, u.id, u.name, u.first); err != nil {
			log.Fatal("seed user failed:", err)
		}
	}

	type seedItem struct {
		files []content.FileSpec
		title string
		desc  string
		price int64
	}
	items := []seedItem{
		{
			files: []content.FileSpec{{FileRef: "demo-photo-001", MediaKind: content.MediaPhoto}},
			title: "Welcome shot",
			desc:  "A free photo to get started",
			price: 0,
		},
		{
			files: []content.FileSpec{{FileRef: "demo-video-001", MediaKind: content.MediaVideo}},
			title: "Premium episode 1",
			desc:  "Exclusive video content for subscribers",
			price: 50,
		},
		{
			files: []content.FileSpec{
				{FileRef: "demo-photo-002", MediaKind: content.MediaPhoto},
				{FileRef: "demo-photo-003", MediaKind: content.MediaPhoto},
				{FileRef: "demo-photo-004", MediaKind: content.MediaPhoto},
			},
			title: "Behind the scenes collection",
			desc:  "Photo collection from behind the scenes",
			price: 120,
		},
	}

	var firstPaid string
	for _, it := range items {
		draft, err := contents.BeginDraft(ctx, it.files)
		if err != nil {
			log.Fatal("seed draft failed:", err)
		}
		if _, err := contents.Configure(ctx, draft.ID, content.ConfigureRequest{
			Title:       strPtr(it.title),
			Description: strPtr(it.desc),
			PriceUnits:  int64Ptr(it.price),
		}); err != nil {
			log.Fatal("seed configure failed:", err)
		}
		if _, err := contents.Publish(ctx, draft.ID); err != nil {
			log.Fatal("seed publish failed:", err)
		}
		if it.price > 0 && firstPaid == "" {
			firstPaid = draft.ID
		}
	}

	// one demo purchase so the unlocked path renders out of the box
	if firstPaid != "" {
		if _, _, err := purchases.GrantUnlock(ctx, 1001, firstPaid, 50, "seed-payment-0001"); err != nil {
			log.Fatal("seed purchase failed:", err)
		}
	}

	log.Println("Seed complete.")
}
