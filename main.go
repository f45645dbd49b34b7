package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cppla/famfit/ai"
	"github.com/cppla/famfit/config"
	"github.com/cppla/famfit/routes"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()
	logger := utils.Logger

	if cfg.JWTSecret == "" {
		// tokens issued with a random secret stop validating after a restart
		cfg.JWTSecret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, using a random per-process secret")
	}

	s, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}

	if cfg.StoreSeed {
		hash, err := utils.HashPassword(cfg.SeedPassword)
		if err != nil {
			logger.Fatal("hash seed password failed", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = store.Seed(ctx, s, hash, time.Now())
		cancel()
		if err != nil {
			logger.Fatal("seed store failed", zap.Error(err))
		}
	}

	gateway := newGateway(cfg, logger)

	gl, err := utils.NewRollingFileLogger(utils.RotationConfig{
		Path:       cfg.GinPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}, cfg.LogLevel)
	if err != nil {
		logger.Warn("gin access log disabled", zap.String("path", cfg.GinPath), zap.Error(err))
		gl = nil
	}
	r := routes.SetupRouter(cfg, s, gateway, logger, gl)

	logger.Info("starting server",
		zap.String("port", cfg.AppPort),
		zap.String("store", cfg.StoreDriver),
		zap.Bool("auth_required", cfg.AuthRequired))
	shutdown := time.Duration(cfg.ShutdownTimeoutSecond) * time.Second
	if err := utils.GraceServer(":"+cfg.AppPort, r, logger, shutdown); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func openStore(cfg config.AppConfig, logger *zap.Logger) (store.Store, error) {
	var s store.Store
	switch cfg.StoreDriver {
	case "mysql":
		db, err := config.OpenDatabase(cfg, store.AllModels()...)
		if err != nil {
			return nil, err
		}
		s = store.NewGorm(db)
	default:
		s = store.NewMemory()
	}
	if cfg.StoreValidateReferences {
		s = store.WithReferenceChecks(s)
	}
	logger.Info("store ready",
		zap.String("driver", cfg.StoreDriver),
		zap.Bool("validate_references", cfg.StoreValidateReferences))
	return s, nil
}

func newGateway(cfg config.AppConfig, logger *zap.Logger) *ai.Gateway {
	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	opts := []ai.Option{ai.WithTimeout(timeout)}

	if cache := utils.NewRedisCache(utils.NewRedisClient(cfg)); cache != nil {
		opts = append(opts, ai.WithCache(cache, time.Duration(cfg.CacheTTLSeconds)*time.Second))
	}

	if cfg.OpenAIAPIKey == "" {
		logger.Info("OPENAI_API_KEY not set, AI endpoints will serve fallback content")
		return ai.NewGateway(nil, logger, opts...)
	}
	client, err := ai.NewOpenAIClient(ai.ClientConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: timeout,
	})
	if err != nil {
		logger.Warn("completion client disabled", zap.Error(err))
		return ai.NewGateway(nil, logger, opts...)
	}
	return ai.NewGateway(client, logger, opts...)
}
