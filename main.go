package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kmhub/ai-service/config"
	"github.com/kmhub/ai-service/pkg/extract"
	"github.com/kmhub/ai-service/routes"
	"github.com/kmhub/ai-service/services"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	listenAddr := flag.String("addr", "", "Listen address, overrides LISTEN_ADDR")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(*envFile); err != nil {
		logger.WithField("env_file", *envFile).Warn("no env file loaded")
	}

	cfg := config.FromEnv()
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ner := services.NewProseNER()
	extractor := extract.New(ner)

	llama := services.NewLlama(cfg.OllamaHost, cfg.LlamaModel, logger)
	whisper := services.NewWhisper(cfg.WhisperAPIKey, cfg.WhisperBaseURL, cfg.WhisperModel, logger)
	fetcher := services.NewFetcher(logger)

	store, err := services.NewVectorStore(services.VectorStoreConfig{
		QdrantHost:       cfg.QdrantHost,
		QdrantPort:       cfg.QdrantPort,
		QdrantAPIKey:     cfg.QdrantAPIKey,
		QdrantUseTLS:     cfg.QdrantUseTLS,
		EmbeddingAPIKey:  cfg.EmbeddingAPIKey,
		EmbeddingBaseURL: cfg.EmbeddingBaseURL,
		EmbeddingModel:   cfg.EmbeddingModel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("vector store initialization failed")
	}

	youtube, err := services.NewYouTube(context.Background(), cfg.YouTubeAPIKey, logger)
	if err != nil {
		logger.WithError(err).Fatal("youtube client initialization failed")
	}

	server := routes.NewServer(extractor, llama, whisper, store, youtube, fetcher, logger)
	e := server.Echo()

	go func() {
		logger.WithField("addr", cfg.ListenAddr).Info("starting http server")
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.WithField("signal", sig.String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
	logger.Info("shutdown complete")
}
