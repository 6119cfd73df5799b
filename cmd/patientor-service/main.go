package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patientor/platform/pkg/common/config"
	"github.com/patientor/platform/pkg/common/kafka"
	"github.com/patientor/platform/pkg/common/logger"
	"github.com/patientor/platform/pkg/diagnoses"
	"github.com/patientor/platform/pkg/gateway"
	"github.com/patientor/platform/pkg/observability/metrics"
	"github.com/patientor/platform/pkg/patients"
	"github.com/patientor/platform/pkg/redact"
)

func main() {
	logger.Init()
	cfg := config.Load()

	catalog, err := diagnoses.Load(cfg.DiagnosesPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load diagnosis catalog")
	}

	rules, err := redact.LoadRules(cfg.RedactionRulesPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load redaction rules")
	}
	redactor, err := redact.NewRedactor(rules)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to compile redaction rules")
	}

	store := patients.NewStore()
	if cfg.PatientsSeedPath != "" {
		seed, err := patients.LoadSeed(cfg.PatientsSeedPath)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to load patient seed")
		}
		if err := store.Seed(seed); err != nil {
			logger.Log.WithError(err).Fatal("failed to seed patients")
		}
		logger.Log.WithField("patients", store.Len()).Info("patients seeded")
	}
	metrics.ObservePatientsStored(store.Len())

	var publisher patients.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
	} else {
		logger.Log.Info("no kafka brokers configured, patient events disabled")
	}

	svc := patients.NewService(store, publisher)

	router := gateway.NewRouter(
		gateway.Options{
			CORSAllowedOrigin: cfg.CORSAllowedOrigin,
			RateLimitRPS:      cfg.RateLimitRPS,
			RateLimitBurst:    cfg.RateLimitBurst,
		},
		patients.NewHTTPHandler(svc, cfg.MaxRequestBody, redactor),
		diagnoses.NewHTTPHandler(catalog),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Patientor Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Patientor Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Patientor Service stopped")
}
