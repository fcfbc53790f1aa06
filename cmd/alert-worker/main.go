package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mindhaven/wellness-platform/cmd/mainconfig"
	"github.com/mindhaven/wellness-platform/internal/alerts"
	"github.com/mindhaven/wellness-platform/internal/alerts/twilioclient"
	appconfig "github.com/mindhaven/wellness-platform/internal/config"
	"github.com/mindhaven/wellness-platform/internal/observability/metrics"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" || cfg.AlertQueueURL == "" {
		logger.Error("alert worker requires DATABASE_URL and ALERT_QUEUE_URL")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	queue := alerts.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.AlertQueueURL)

	var sms alerts.SMSSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		smsClient, err := twilioclient.New(twilioclient.Config{
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
		sms = smsClient
	} else {
		logger.Warn("Twilio not configured; guardian SMS alerts will fail hard")
	}

	reg := prometheus.NewRegistry()
	gateway := alerts.NewGateway(alerts.GatewayConfig{
		SMS:      sms,
		Records:  alerts.NewRecordStore(pool),
		Hotline:  cfg.CrisisHotline,
		TextLine: cfg.CrisisTextLine,
		Metrics:  metrics.NewCrisisMetrics(reg),
		Logger:   logger.Component("alert-gateway"),
	})

	// Delivery counters are scraped from the worker's own listener.
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux}
	go func() {
		logger.Info("metrics listening", "addr", metricsSrv.Addr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	worker := alerts.NewWorker(gateway, queue, logger.Component("alert-worker"))
	worker.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("alert worker shutting down")
	cancel()
	worker.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
}
