package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/credit-assessment/internal/config"
	"github.com/Dan9191/credit-assessment/internal/handler"
	"github.com/Dan9191/credit-assessment/internal/integrations/cbr"
	"github.com/Dan9191/credit-assessment/internal/parser"
	"github.com/Dan9191/credit-assessment/internal/repository"
	"github.com/Dan9191/credit-assessment/internal/scoring"
	"github.com/Dan9191/credit-assessment/internal/service"
	"github.com/Dan9191/credit-assessment/internal/utils/email"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment")
	}

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Sample datasets
	var samples repository.Source = repository.NewStaticSamples()
	if cfg.SampleSource == config.SamplesPostgres {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		samples = repository.NewChain(repository.NewRepository(db), samples, logger)
	}

	// Scoring model
	var scorer scoring.Scorer = scoring.NewAdditiveScorer()
	if cfg.ScoringMode == config.ScoringSimulation {
		logger.Warn("Simulation scoring enabled, risk scores are randomized")
		scorer = scoring.NewSimulatedScorer(rand.NewSource(time.Now().UnixNano()))
	}

	// Notifications
	var alerter service.FallbackAlerter
	var mailer handler.SummarySender
	if cfg.EmailEnabled() {
		sender := email.NewSender(cfg, logger)
		alerter = sender
		mailer = sender
	}

	// Initialize layers
	p := parser.NewParser(samples, logger)
	svc := service.NewService(p, samples, scorer, alerter, logger)

	// Reference key rate
	var rates handler.RateSource
	if cfg.CBREnabled {
		var cache cbr.RateCache = cbr.NewMemoryCache()
		if cfg.RedisAddr != "" {
			client := cbr.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			defer client.Close()
			cache = cbr.NewRedisCache(client)
		}
		refresher := cbr.NewRefresher(cbr.NewCBRClient(cfg, logger), cache, cfg.KeyRateTTL, logger)
		if err := refresher.Start(cfg.KeyRateSchedule); err != nil {
			logger.Fatalf("Failed to start key rate refresher: %v", err)
		}
		defer refresher.Stop()
		rates = refresher
	}

	h := handler.NewHandler(svc, scorer, rates, mailer, cfg, logger)

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/assessments", h.Assess).Methods("POST")
	r.HandleFunc("/scores", h.Score).Methods("POST")
	r.HandleFunc("/key-rate", h.KeyRate).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AssessmentTimeout + 10*time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
