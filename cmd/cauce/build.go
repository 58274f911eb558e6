package main

import (
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/cauceflow/cauce"
	"github.com/cauceflow/cauce/internal/config"
	"github.com/cauceflow/cauce/pkg/adapters/fileflow"
	"github.com/cauceflow/cauce/pkg/adapters/httpapi"
	"github.com/cauceflow/cauce/pkg/adapters/memory"
	"github.com/cauceflow/cauce/pkg/adapters/mercadopago"
	"github.com/cauceflow/cauce/pkg/adapters/openai"
	redisAdapter "github.com/cauceflow/cauce/pkg/adapters/redis"
	"github.com/cauceflow/cauce/pkg/persistence/middleware"
	"github.com/cauceflow/cauce/pkg/ports"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.Load(cfgPath)
}

// buildEngine assembles the engine from configuration: flow source, session
// store with its middleware chain, and the external collaborators that have
// credentials configured.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*cauce.Engine, error) {
	flows, err := fileflow.New(cfg.FlowsDir)
	if err != nil {
		return nil, err
	}

	store, locker, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	opts := []cauce.Option{
		cauce.WithLogger(logger),
		cauce.WithSessionStore(store),
		cauce.WithAPIExecutor(httpapi.New(cfg.EndpointTable(), httpapi.WithLogger(logger))),
	}
	if locker != nil {
		opts = append(opts, cauce.WithLocker(locker))
	}
	if cfg.Engine.MaxSteps > 0 {
		opts = append(opts, cauce.WithMaxSteps(cfg.Engine.MaxSteps))
	}
	if cfg.Engine.MaxAttempts > 0 {
		opts = append(opts, cauce.WithMaxAttempts(cfg.Engine.MaxAttempts))
	}
	if len(cfg.Engine.CancelKeywords) > 0 {
		opts = append(opts, cauce.WithCancelKeywords(cfg.Engine.CancelKeywords))
	}
	if cfg.OpenAI.APIKey != "" {
		var aiOpts []openai.Option
		if cfg.OpenAI.BaseURL != "" {
			aiOpts = append(aiOpts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Model != "" {
			aiOpts = append(aiOpts, openai.WithDefaultModel(cfg.OpenAI.Model))
		}
		opts = append(opts, cauce.WithCompleter(openai.New(cfg.OpenAI.APIKey, aiOpts...)))
	}
	if cfg.Payments.AccessToken != "" {
		var mpOpts []mercadopago.Option
		if cfg.Payments.BaseURL != "" {
			mpOpts = append(mpOpts, mercadopago.WithBaseURL(cfg.Payments.BaseURL))
		}
		opts = append(opts, cauce.WithPaymentService(
			mercadopago.New(mercadopago.StaticToken(cfg.Payments.AccessToken), mpOpts...)))
	}

	return cauce.New(flows, opts...)
}

func buildStore(cfg *config.Config) (ports.SessionStore, ports.DistributedLocker, error) {
	var store ports.SessionStore = memory.NewStore()
	var locker ports.DistributedLocker

	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		var storeOpts []redisAdapter.Option
		if cfg.Redis.TTL.Std() > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(cfg.Redis.TTL.Std()))
		}
		store = redisAdapter.NewFromClient(client, storeOpts...)
		if cfg.Redis.DistributedLock {
			locker = redisAdapter.NewLocker(client, "cauce:")
		}
	}

	// Masking runs before encryption so patterns see variable names, not
	// ciphertext.
	var mws []middleware.Middleware
	if len(cfg.Session.MaskVariables) > 0 {
		mws = append(mws, middleware.NewPIIMask(cfg.Session.MaskVariables))
	}
	if cfg.Session.EncryptionKey != "" {
		active, err := middleware.ParseKey(cfg.Session.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("session.encryption_key: %w", err)
		}
		fallbacks := make([][]byte, 0, len(cfg.Session.FallbackKeys))
		for i, raw := range cfg.Session.FallbackKeys {
			key, err := middleware.ParseKey(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("session.fallback_keys[%d]: %w", i, err)
			}
			fallbacks = append(fallbacks, key)
		}
		mws = append(mws, middleware.NewEncryption(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		}))
	}
	return middleware.Chain(store, mws...), locker, nil
}
