package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"wanderer.ai/internal/follow"
	"wanderer.ai/internal/logging"
	"wanderer.ai/internal/pathing"
	"wanderer.ai/internal/persistence/indexdb"
	persistlog "wanderer.ai/internal/persistence/log"
	"wanderer.ai/internal/protocol"
	"wanderer.ai/internal/sim/tuning"
	"wanderer.ai/internal/transport/ws"
)

func main() {
	configDir := flag.String("config", ".", "directory holding wanderer.yaml")
	flag.Parse()

	cfg, err := loadConfig(viper.New(), *configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Component: "server"})

	tune, err := tuning.Load(cfg.TuningPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("path", cfg.TuningPath).Msg("tuning not found; using defaults")
		tune = tuning.Defaults()
	case err != nil:
		log.Fatal().Err(err).Msg("load tuning")
	}

	validator, err := protocol.NewValidator()
	if err != nil {
		log.Fatal().Err(err).Msg("compile schemas")
	}
	searchMetrics, err := pathing.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("search metrics")
	}
	followMetrics, err := follow.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("follow metrics")
	}

	opts := ws.Options{
		Tuning:        tune,
		Log:           log,
		Validator:     validator,
		SearchMetrics: searchMetrics,
		FollowMetrics: followMetrics,
	}

	idx, err := openIndex(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open index backend")
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertTuning(tune); err != nil {
			log.Warn().Err(err).Msg("index backend: upsert tuning")
		}
		opts.Index = idx
	}
	if cfg.TraceEnabled {
		trace := persistlog.NewTraceLogger(cfg.DataDir)
		defer trace.Close()
		opts.Trace = trace
	}
	if cfg.PlansEnabled {
		plans := persistlog.NewPlanLogger(cfg.DataDir)
		defer plans.Close()
		opts.Plans = plans
	}

	ctx, cancel := signalContext()
	defer cancel()

	wsSrv := ws.NewServer(opts)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, wsSrv, idx)
	})
	if cfg.PprofEnabled {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	log.Info().
		Str("addr", cfg.Addr).
		Str("strategy", tune.Strategy().Name).
		Int("tick_rate_hz", tune.TickRateHz).
		Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("ListenAndServe")
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// writeMetrics emits the server's gauges in the Prometheus text format.
func writeMetrics(rw http.ResponseWriter, srv *ws.Server, idx *indexdb.SQLiteIndex) {
	fmt.Fprintf(rw, "# HELP wanderer_sessions Connected agent sessions.\n")
	fmt.Fprintf(rw, "# TYPE wanderer_sessions gauge\n")
	fmt.Fprintf(rw, "wanderer_sessions %d\n", srv.Active())

	if idx == nil {
		return
	}
	st := idx.Stats()
	fmt.Fprintf(rw, "# HELP wanderer_index_queue_depth Plan index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE wanderer_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "wanderer_index_queue_depth %d\n", st.QueueDepth)
	fmt.Fprintf(rw, "# HELP wanderer_index_queue_capacity Plan index writer queue capacity.\n")
	fmt.Fprintf(rw, "# TYPE wanderer_index_queue_capacity gauge\n")
	fmt.Fprintf(rw, "wanderer_index_queue_capacity %d\n", st.QueueCapacity)
	fmt.Fprintf(rw, "# HELP wanderer_index_dropped_total Index writes dropped because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE wanderer_index_dropped_total counter\n")
	fmt.Fprintf(rw, "wanderer_index_dropped_total{kind=%q} %d\n", "plan", st.DropPlanTotal)
	fmt.Fprintf(rw, "wanderer_index_dropped_total{kind=%q} %d\n", "follow", st.DropFollowTotal)
}
