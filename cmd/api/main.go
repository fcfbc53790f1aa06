package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mindhaven/wellness-platform/cmd/mainconfig"
	"github.com/mindhaven/wellness-platform/internal/accounts"
	"github.com/mindhaven/wellness-platform/internal/ai"
	"github.com/mindhaven/wellness-platform/internal/alerts"
	"github.com/mindhaven/wellness-platform/internal/alerts/twilioclient"
	"github.com/mindhaven/wellness-platform/internal/api/router"
	"github.com/mindhaven/wellness-platform/internal/assessment"
	"github.com/mindhaven/wellness-platform/internal/checkins"
	appconfig "github.com/mindhaven/wellness-platform/internal/config"
	"github.com/mindhaven/wellness-platform/internal/counselors"
	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/internal/notify"
	"github.com/mindhaven/wellness-platform/internal/observability/metrics"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting wellness-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The escalation event log runs on database/sql so the same pipeline can
	// back onto sqlmock in tests.
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	redisOpts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	crisisMetrics := metrics.NewCrisisMetrics(reg)

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Alert queue: SQS in production, in-memory for local development.
	var queue alerts.QueueClient
	if cfg.UseMemoryQueue {
		logger.Warn("using in-memory alert queue; alerts are lost on restart")
		queue = alerts.NewMemoryQueue(64)
	} else {
		if cfg.AlertQueueURL == "" {
			logger.Error("ALERT_QUEUE_URL is required unless USE_MEMORY_QUEUE=true")
			os.Exit(1)
		}
		queue = alerts.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.AlertQueueURL)
	}

	// Guardian SMS provider. Left nil when Twilio is not configured; the
	// gateway records guardian sends as hard failures in that case.
	var smsClient *twilioclient.Client
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		smsClient, err = twilioclient.New(twilioclient.Config{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioFromNumber,
			Timeout:    cfg.SMSTimeout,
			Logger:     logger.Logger,
		})
		if err != nil {
			logger.Error("failed to create Twilio client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("Twilio not configured; guardian SMS alerts will fail hard")
	}

	// Counselor notifications: SendGrid first, SES fallback, stub for dev.
	var emailSender notify.EmailSender
	switch {
	case cfg.SendGridAPIKey != "":
		emailSender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	case cfg.SESFromEmail != "":
		emailSender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	default:
		logger.Warn("no email provider configured; counselor emails are logged only")
		emailSender = notify.NewStubEmailSender(logger)
	}

	var counselorSMS notify.SMSSender
	if smsClient != nil {
		counselorSMS = notify.NewSimpleSMSSender(func(ctx context.Context, to, body string) error {
			_, err := smsClient.SendSMS(ctx, to, body)
			return err
		}, logger)
	} else {
		counselorSMS = notify.NewStubSMSSender(logger)
	}

	roster := counselors.NewRosterStore(rdb, cfg.CounselorRosterTTL)
	notifier := notify.NewService(emailSender, counselorSMS, roster, logger)

	// Escalation pipeline: event log, counselor fan-out, durable alert outbox.
	// The record store doubles as the fallback recorder so an outbox failure
	// still leaves a failed outcome per resolved channel.
	eventStore := escalation.NewEventStore(sqlDB)
	outbox := alerts.NewOutboxStore(pool)
	recordStore := alerts.NewRecordStore(pool)
	dispatcher := escalation.NewDispatcher(eventStore, notifier, outbox, logger.Component("escalation")).
		WithAlertRecorder(recordStore)

	deliverer := alerts.NewDeliverer(outbox, alerts.NewQueuePublisher(queue), logger.Component("alert-deliverer")).
		WithBatchSize(int32(cfg.AlertOutboxBatch)).
		WithInterval(cfg.AlertPollInterval)

	// AI scorer is optional; without it assessments run on keywords alone.
	var scorer ai.CrisisScorer
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiScorer(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create Gemini scorer", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		scorer = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set; AI crisis scoring disabled")
	}

	checkinStore := checkins.NewPostgresStore(pool)
	assessmentStore := assessment.NewPostgresStore(pool)
	accountStore := accounts.NewPostgresStore(pool)

	assessor := assessment.NewService(assessment.ServiceConfig{
		Scorer:     scorer,
		Accounts:   accountStore,
		Checkins:   checkinStore,
		Store:      assessmentStore,
		Dispatcher: dispatcher,
		Metrics:    crisisMetrics,
		AITimeout:  cfg.AITimeout,
		Logger:     logger.Component("assessment"),
	})

	r := router.New(&router.Config{
		Logger:             logger,
		Checkins:           checkins.NewHandler(checkinStore, logger),
		Assessments:        assessment.NewHandler(assessor, assessmentStore, logger),
		Escalations:        escalation.NewHandler(eventStore, logger),
		Roster:             counselors.NewHandler(roster, logger),
		Alerts:             alerts.NewHandler(recordStore, logger),
		CounselorJWTSecret: cfg.CounselorJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PublicRateLimit:    cfg.PublicRateLimit,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go deliverer.Start(runCtx)

	// With the in-memory queue there is no separate worker process, so the
	// delivery worker runs inside the API server.
	if cfg.UseMemoryQueue {
		gateway := alerts.NewGateway(alerts.GatewayConfig{
			SMS:      smsSenderOrNil(smsClient),
			Records:  recordStore,
			Hotline:  cfg.CrisisHotline,
			TextLine: cfg.CrisisTextLine,
			Metrics:  crisisMetrics,
			Logger:   logger.Component("alert-gateway"),
		})
		worker := alerts.NewWorker(gateway, queue, logger.Component("alert-worker"))
		worker.Start(runCtx)
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// smsSenderOrNil avoids handing the gateway a non-nil interface wrapping a
// nil *twilioclient.Client.
func smsSenderOrNil(client *twilioclient.Client) alerts.SMSSender {
	if client == nil {
		return nil
	}
	return client
}
