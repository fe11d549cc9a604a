package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/tillerhq/tiller"
	"github.com/tillerhq/tiller/internal/config"
	"github.com/tillerhq/tiller/internal/logging"
	"github.com/tillerhq/tiller/pkg/adapters/file"
	"github.com/tillerhq/tiller/pkg/adapters/gemini"
	"github.com/tillerhq/tiller/pkg/adapters/memory"
	redisadapter "github.com/tillerhq/tiller/pkg/adapters/redis"
	"github.com/tillerhq/tiller/pkg/domain"
	"github.com/tillerhq/tiller/pkg/session"
)

// createLogger configures the application logger. In debug mode it writes to
// Stderr so log lines stay out of the chat transcript on Stdout.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// setupPersistence builds the state store and session manager from config.
func setupPersistence(cfg config.StoreConfig, logger *slog.Logger) (*session.Manager, error) {
	managerOpts := []session.Option{session.WithLogger(logger)}

	switch cfg.Backend {
	case config.StoreMemory, "":
		return session.NewManager(memory.NewStore(), managerOpts...), nil

	case config.StoreFile:
		return session.NewManager(file.New(cfg.Path), managerOpts...), nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		var storeOpts []redisadapter.Option
		if cfg.TTL.Std() > 0 {
			storeOpts = append(storeOpts, redisadapter.WithTTL(cfg.TTL.Std()))
		}
		if cfg.DistributedLock {
			managerOpts = append(managerOpts, session.WithLocker(redisadapter.NewLocker(client, "tiller:")))
		}
		return session.NewManager(redisadapter.NewFromClient(client, storeOpts...), managerOpts...), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// createEngine initializes the engine with the Gemini steps.
func createEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*tiller.Engine, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	steps, err := gemini.DefaultSteps(ctx, gemini.Config{
		APIKey:         apiKey,
		ClarityModel:   cfg.Models.Clarity,
		ResearchModel:  cfg.Models.Research,
		AssessorModel:  cfg.Models.Assessor,
		ValidatorModel: cfg.Models.Validator,
		SynthesisModel: cfg.Models.Synthesis,
	}, gemini.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("error initializing gemini steps: %w", err)
	}

	engineOpts := []tiller.Option{tiller.WithLogger(logger)}
	for _, h := range hooks {
		engineOpts = append(engineOpts, tiller.WithLifecycleHooks(h))
	}
	return tiller.New(steps, engineOpts...)
}
