package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"spendbot/internal/acquire"
	"spendbot/internal/config"
	"spendbot/internal/handler"
	"spendbot/internal/parser"
	"spendbot/internal/parser/claude"
	"spendbot/internal/parser/openai"
	"spendbot/internal/port"
	"spendbot/internal/repository/postgres"
	"spendbot/internal/router"
	"spendbot/internal/service"
	s3storage "spendbot/internal/storage/s3"
	"spendbot/internal/telegram"
	"spendbot/internal/validator"
	"spendbot/internal/wizard"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func registerParsers() {
	parser.RegisterProvider("claude", func(pc *config.ParserProviderConfig) (port.DocumentParser, error) {
		return claude.NewParser(pc), nil
	})
	parser.RegisterProvider("openai", func(pc *config.ParserProviderConfig) (port.DocumentParser, error) {
		return openai.NewParser(pc), nil
	})
}

func serve(ctx context.Context) error {
	if cfg.Telegram.Token == "" {
		return errors.New("SPENDBOT_TELEGRAM_TOKEN is required")
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	categoryRepo := postgres.NewCategoryRepo(db)
	expenseRepo := postgres.NewExpenseRepo(db)
	auditRepo := postgres.NewExpenseAuditRepo(db)

	// Initialize storage
	var store port.ObjectStorage
	if cfg.S3.Enabled() {
		if store, err = s3storage.NewObjectStore(ctx, &cfg.S3); err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize Telegram
	api, err := telegram.NewBotAPI(cfg.Telegram.Token, cfg.Telegram.Debug)
	if err != nil {
		return err
	}
	messenger := telegram.NewMessenger(api)

	// Initialize acquisition
	resolver := acquire.RouteResolver{Platform: telegram.NewFileResolver(api)}
	if store != nil {
		resolver.External = acquire.InboxResolver{
			Storage:       store,
			Bucket:        cfg.S3.Bucket,
			Prefix:        cfg.S3.InboxPrefix,
			ExpirySeconds: cfg.S3.PresignExpiry,
		}
	}
	acqCfg := acquire.Config{TempDir: cfg.Acquire.TempDir, MaxFileSizeMB: cfg.Acquire.MaxFileSizeMB}
	if store != nil && cfg.S3.Archive {
		acqCfg.ArchiveBucket = cfg.S3.Bucket
	}
	acquirer := acquire.NewAcquirer(resolver, &http.Client{Timeout: cfg.Acquire.DownloadTimeout}, store, acqCfg, log)

	if n, err := acquire.PurgeStale(cfg.Acquire.TempDir, cfg.Session.IdleTimeout, time.Now()); err != nil {
		log.Warn("serve: purging stale temp files failed", zap.Error(err))
	} else if n > 0 {
		log.Info("serve: purged stale temp files", zap.Int("count", n))
	}

	// Initialize extraction
	registerParsers()
	chain, err := parser.NewChain(&cfg.Parser, log)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}
	extractor := service.NewReceiptExtractor(chain, expenseRepo, categoryRepo, userRepo, auditRepo,
		service.ExtractorConfig{
			ReviewConfidence: cfg.Session.ReviewConfidence,
			DefaultCurrency:  cfg.Session.DefaultCurrency,
		}, log)

	// Initialize the receipt workflow
	registry := validator.NewDefaultRegistry()
	engine := wizard.NewEngine(wizard.Deps{
		Acquirer:   acquirer,
		Extractor:  extractor,
		Expenses:   service.NewExpenseService(expenseRepo, auditRepo, registry, log),
		Summarizer: service.NewSummarizer(categoryRepo),
		Categories: categoryRepo,
		Users:      userRepo,
		Messenger:  messenger,
		Manual:     telegram.NewManualEntry(messenger, userRepo),
		Registry:   registry,
	}, wizard.Config{ExtractionTimeout: cfg.Session.ExtractionTimeout}, log)
	sessions := wizard.NewManager(engine, wizard.ManagerConfig{
		IdleTimeout:   cfg.Session.IdleTimeout,
		SweepInterval: cfg.Session.SweepInterval,
	}, log)
	bot := telegram.NewBot(api, sessions, userRepo, messenger, cfg.Telegram.PollTimeout, log)

	// Initialize HTTP
	tokens := service.NewTokenService(cfg.Auth)
	r := router.Setup(
		tokens,
		handler.NewHealthHandler(db),
		handler.NewDocumentHandler(sessions, userRepo, log),
		handler.NewExportHandler(service.NewExportService(expenseRepo, categoryRepo, userRepo)),
		log,
	)
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sessions.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		bot.Run(ctx)
	}()

	srvErr := make(chan error, 1)
	go func() {
		log.Info("serve: http server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-srvErr:
		log.Error("serve: http server failed", zap.Error(err))
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("serve: http shutdown", zap.Error(err))
	}
	wg.Wait()
	log.Info("serve: stopped")
	return err
}
