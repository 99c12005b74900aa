package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"go-data-processor/internal/api"
	"go-data-processor/internal/engine"
	"go-data-processor/internal/ingest"
	"go-data-processor/internal/sink"
	"go-data-processor/internal/store"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	sampleSource := flag.String("sample-source", "sample", "source name for the startup sample data")
	samplePath := flag.String("sample-data", "", "optional csv/jsonl file loaded at startup")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.WithField("component", "main")

	records := store.NewRecordStore()
	registry := store.NewJobRegistry()
	metrics := engine.NewMetrics(registry, 0)
	executor := engine.NewExecutor(registry, records, metrics, sink.NewRouter())

	if *samplePath != "" {
		if n, err := ingest.FromFile(records, *sampleSource, *samplePath); err != nil {
			log.WithField("error", err).Warn("could not load sample data")
		} else {
			log.WithField("records", n).Info("sample data loaded")
		}
	}

	metrics.Start()
	executor.Start()

	server := &http.Server{
		Addr:    *addr,
		Handler: api.NewServer(registry, records, metrics).Routes(),
	}

	go func() {
		log.WithField("addr", *addr).Info("🚀 data processor listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err).Fatal("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithField("error", err).Warn("http shutdown")
	}
	executor.Stop()
	metrics.Stop()
	log.Info("bye")
}
