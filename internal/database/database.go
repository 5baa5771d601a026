package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // registers the cgo-free "sqlite" driver

	"channelbot/internal/domain/content"
	"channelbot/internal/domain/purchase"
	"channelbot/internal/domain/user"
)

func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite store:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}

// Migrate applies the schema for every persisted entity. Content rows are
// soft-deleted only, so no migration ever drops purchase history.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.Profile{},
		&content.Item{},
		&content.File{},
		&content.Translation{},
		&purchase.Record{},
	)
}
