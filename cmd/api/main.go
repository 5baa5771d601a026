package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"channelbot/internal/config"
	"channelbot/internal/database"
	"channelbot/internal/domain/catalog"
	"channelbot/internal/domain/content"
	"channelbot/internal/domain/delivery"
	"channelbot/internal/domain/ingest"
	"channelbot/internal/domain/purchase"
	"channelbot/internal/domain/user"
	"channelbot/internal/metrics"
	"channelbot/internal/middleware"
	"channelbot/internal/modules/feed"
	"channelbot/internal/modules/operator"
	jwtsvc "channelbot/internal/pkg/jwt"
	"channelbot/internal/translate"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	translator, err := translate.NewService(translate.Lang(cfg.BaseLang))
	if err != nil {
		logger.Fatal("translator init failed", zap.Error(err))
	}

	m := metrics.New()
	hub := delivery.NewHub(logger)

	contentRepo := content.NewRepository(db)
	contents := content.NewService(contentRepo, translator, m, logger)
	purchases := purchase.NewService(db, contents, m, logger)
	users := user.NewService(db, translator.BaseLang())
	catalogs := catalog.NewService(contents, purchases, users, translator, m)

	aggregator := ingest.NewAggregator(cfg.AggregationWindow, ingest.NewRealClock(),
		func(ctx context.Context, sessionID string, files []content.FileSpec) (string, error) {
			item, err := contents.BeginDraft(ctx, files)
			if err != nil {
				return "", err
			}
			return item.ID, nil
		}, logger)

	j := jwtsvc.New(cfg.JWTSecret, cfg.TokenTTL)

	operatorHandler := operator.NewHandler(aggregator, contents, purchases, catalogs, hub, j, cfg.OperatorPassHash, logger)
	feedHandler := feed.NewHandler(users, catalogs, purchases, hub, cfg.FeedPageSize, logger)

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/api/v1")
	{
		// public
		operator.RegisterAuthRoutes(v1, operatorHandler)
		feed.RegisterRoutes(v1, feedHandler)

		// protected operator surface
		protected := v1.Group("/")
		protected.Use(middleware.OperatorAuth(j))
		{
			operator.RegisterRoutes(protected, operatorHandler)
		}
	}

	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
