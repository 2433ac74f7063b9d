// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/Micheles111/Final-ASE-Project/internal/handlers"
	"github.com/Micheles111/Final-ASE-Project/internal/middleware"
	"github.com/Micheles111/Final-ASE-Project/internal/monitor"
	"github.com/Micheles111/Final-ASE-Project/internal/notify"
	"github.com/Micheles111/Final-ASE-Project/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	st, err := store.NewRedisFromEnv()
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}

	timeout := time.Duration(getEnvInt("COLLABORATOR_TIMEOUT_MS", 2000)) * time.Millisecond
	notifier := notify.New(
		getEnv("HISTORY_SERVICE_URL", "http://history-service:5000/history/matches"),
		getEnv("PLAYER_SERVICE_URL", "http://player-service:5000/players"),
		timeout,
		logger,
	)

	metrics := monitor.NewMetrics("escoba")
	srv := handlers.NewServer(st, notifier, logger, metrics)

	mux := srv.Routes()
	if metricsAddr := os.Getenv("METRICS_ADDR"); metricsAddr != "" {
		go func() {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
				logger.WithError(err).Error("metrics listener exited")
			}
		}()
	} else {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	handler := middleware.LogMiddleware(logger)(middleware.Instrument(metrics)(mux))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("Running on %s", addr)

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("shutdown incomplete")
		}
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
