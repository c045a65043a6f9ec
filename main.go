package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wicketproxy/wicket/config"
	"github.com/wicketproxy/wicket/logger"
	"github.com/wicketproxy/wicket/proxy"
)

func main() {
	configPath := pflag.StringP("config", "c", "wicket.ini", "path to the ini configuration file")
	listenAddr := pflag.String("listen", "", "listen address, overrides the config file")
	adminAddr := pflag.String("admin", "", "admin listen address, overrides the config file")
	debug := pflag.Bool("debug", false, "enable debug logging")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *adminAddr != "" {
		cfg.AdminAddr = *adminAddr
	}

	// Initialize logger
	logg, err := logger.New(cfg.LogFile, *debug)
	if err != nil {
		log.Fatal("Error initializing logger: ", err)
	}
	defer logg.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Create and start proxy
	p := proxy.New(cfg, logg, proxy.NewMetrics(reg))
	if err := p.Listen(cfg.ListenAddr); err != nil {
		logg.Fatal("Proxy listen failed", zap.Error(err))
	}

	var group errgroup.Group
	group.Go(p.Serve)

	if cfg.AdminAddr != "" {
		router := chi.NewRouter()
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})

		admin := &http.Server{Addr: cfg.AdminAddr, Handler: router}
		logg.Info("Admin server started", zap.String("addr", cfg.AdminAddr))
		group.Go(admin.ListenAndServe)
	}

	if err := group.Wait(); err != nil {
		logg.Fatal("Proxy server failed", zap.Error(err))
	}
}
