package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/csheth/polysumm/internal/chat"
	"github.com/csheth/polysumm/internal/config"
	"github.com/csheth/polysumm/internal/kv"
	"github.com/csheth/polysumm/internal/logging"
	"github.com/csheth/polysumm/internal/qa"
	"github.com/csheth/polysumm/internal/session"
	"github.com/csheth/polysumm/internal/upload"
)

const redisNamespace = "polysumm"

// app is the wired client shared by the TUI and every subcommand.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	durable  kv.Store
	sessions *session.Store
	client   *qa.Client
	engine   *chat.Engine
	uploads  *upload.Service
}

func bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		return nil, err
	}

	durable, err := kv.Open(kv.Options{
		Backend:   cfg.Store,
		Dir:       cfg.StateDir,
		RedisURL:  cfg.RedisURL,
		Namespace: redisNamespace,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open session store: %w", err)
	}
	// Tab-scoped state lives only as long as this process.
	tab := kv.NewMemoryStore()

	sessions, err := session.Open(durable, tab, session.WithLogger(logger.Named("session")))
	if err != nil {
		closeStore(durable)
		_ = logger.Sync()
		return nil, err
	}

	client := qa.New(qa.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
		Retry: qa.RetryPolicy{
			MaxAttempts:     cfg.RetryAttempts,
			InitialInterval: cfg.RetryInitial,
			MaxInterval:     cfg.RetryMax,
		},
		Logger: logger.Named("qa"),
	})
	engine := chat.NewEngine(chat.Options{
		Client:       client,
		Conversation: chat.NewConversation(tab, logger.Named("chat")),
		TopK:         cfg.TopK,
		Instant:      !cfg.Typing,
		Logger:       logger.Named("chat"),
	})

	logger.Info("polysumm started",
		zap.String("api_url", cfg.APIURL),
		zap.String("store", cfg.Store),
		zap.String("state_dir", cfg.StateDir),
	)
	return &app{
		cfg:      cfg,
		logger:   logger,
		durable:  durable,
		sessions: sessions,
		client:   client,
		engine:   engine,
		uploads:  upload.NewService(client, sessions, engine, logger.Named("upload")),
	}, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = flagAPIURL
	}
	if flags.Changed("store") {
		cfg.Store = flagStore
	}
	if flags.Changed("state-dir") {
		cfg.StateDir = flagStateDir
		if os.Getenv("POLYSUMM_LOG_FILE") == "" {
			cfg.LogFile = filepath.Join(cfg.StateDir, "polysumm.log")
		}
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}
	if flagNoTyping {
		cfg.Typing = false
	}
}

// Close stops the engine and releases the store and logger.
func (a *app) Close() {
	a.engine.Stop()
	closeStore(a.durable)
	_ = a.logger.Sync()
}

func closeStore(store kv.Store) {
	if closer, ok := store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

// requireDocument opens the current document's conversation or explains how
// to load one.
func (a *app) requireDocument() (session.Session, error) {
	current := a.sessions.Get()
	if !current.Active() || current.DocumentID == "" {
		return current, fmt.Errorf("no document loaded; run `polysumm upload FILE` first")
	}
	a.engine.Open(current.DocumentID, current.Summary)
	return current, nil
}
