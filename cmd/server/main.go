package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/internal/config"
	"github.com/baditaflorin/go_cyberbullying/internal/metrics"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
	"github.com/baditaflorin/go_cyberbullying/internal/server"
	"github.com/baditaflorin/go_cyberbullying/internal/warmup"
	"github.com/baditaflorin/go_cyberbullying/pkg/predictor"
)

// DefaultConcurrency of 0 lets fasthttp pick its own limit.
const DefaultConcurrency = 0

func main() {
	configPath := flag.String("config", "", "YAML config file (default $CYBERBULLYING_CONFIG)")
	addr := flag.String("addr", "", "Listen address, overrides the config")
	modelDir := flag.String("model-dir", "", "Model artifact directory, overrides the config")
	logFile := flag.String("log-file", "", "Log file path, overrides the config")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent connections (0 = fasthttp default)")
	warmUp := flag.Bool("warm-up", false, "Warm up the cleaner and the models on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *modelDir != "" {
		cfg.Models.Dir = *modelDir
	}
	if *logFile != "" {
		cfg.Logging.Output = *logFile
	}
	if *warmUp {
		cfg.Server.WarmUp = true
	}

	lg, err := logger.Open(cfg.Logging.Settings())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.FromExisting(lg)
	defer log.Close()

	log.Info("Starting cyberbullying HTTP server",
		"addr", cfg.Server.Addr,
		"model_dir", cfg.Models.Dir,
		"read_timeout", cfg.Server.ReadTimeout,
		"write_timeout", cfg.Server.WriteTimeout,
		"max_request_bytes", cfg.Server.MaxRequestBytes,
		"cpus", runtime.NumCPU(),
	)

	m := metrics.Default()

	predictorOpts := []predictor.Option{
		predictor.WithModelDir(cfg.Models.Dir),
		predictor.WithModelNames(cfg.Models.Binary, cfg.Models.Classifier),
		predictor.WithLogger(lg),
		predictor.WithMetrics(m),
	}
	if cfg.Models.CacheSize > 0 {
		predictorOpts = append(predictorOpts, predictor.WithModelCache(cfg.Models.CacheSize, cfg.Models.CacheTTL))
	}
	pred, err := predictor.New(predictorOpts...)
	if err != nil {
		log.Error("Failed to initialize predictor", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		Cleaning:       cfg.Cleaning,
		MaxBatchSize:   cfg.Server.MaxBatchSize,
		RequestTimeout: cfg.Server.WriteTimeout,
		Predictor:      pred,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Logger:         log,
	})
	if err != nil {
		log.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	if cfg.Server.WarmUp {
		warmUpServer(srv, pred, cfg, log)
	}

	httpServer := &fasthttp.Server{
		Handler:               srv.Handler,
		Name:                  "CyberbullyingServer",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		MaxRequestBodySize:    cfg.Server.MaxRequestBytes,
		Concurrency:           *concurrency,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		if err := httpServer.Shutdown(); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	log.Info("Server listening", "address", cfg.Server.Addr)
	if err := httpServer.ListenAndServe(cfg.Server.Addr); err != nil {
		log.Error("Server error", "error", err)
		return
	}

	<-idleConnsClosed
	log.Info("Server stopped")
}

// warmUpServer runs the default pipeline and both models on sample tweets.
// Failures are logged and never stop the server.
func warmUpServer(srv *server.Server, pred *predictor.Predictor, cfg *config.Config, log ports.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pipeline, err := srv.Registry().Pipeline(cfg.Cleaning)
	if err != nil {
		log.Warn("Cleaner warm-up skipped", "error", err)
	} else {
		manager, err := warmup.NewManager(log, warmup.DefaultConfig())
		if err != nil {
			log.Warn("Cleaner warm-up skipped", "error", err)
		} else {
			manager.RegisterNormalizer(pipeline)
			manager.WarmUp(ctx)
		}
	}
	pred.WarmUp(ctx, warmup.DefaultConfig())
}
