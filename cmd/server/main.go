package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/annwhocodes/ResQMap/pkg/config"
	"github.com/annwhocodes/ResQMap/pkg/geocode"
	"github.com/annwhocodes/ResQMap/pkg/hazard"
	"github.com/annwhocodes/ResQMap/pkg/kv"
	"github.com/annwhocodes/ResQMap/pkg/osrm"
	"github.com/annwhocodes/ResQMap/pkg/scorer"
	"github.com/annwhocodes/ResQMap/pkg/server/rest"
	"github.com/annwhocodes/ResQMap/pkg/server/rest/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	configFile   = flag.String("config", "", "path to toml config file")
	listenAddr   = flag.String("listenaddr", "", "server listen address (overrides config)")
	modelFile    = flag.String("model", "", "scorer model artifact (overrides config)")
	cacheDir     = flag.String("cachedir", "", "offline route cache directory (overrides config)")
	startOffline = flag.Bool("offline", false, "start in offline mode")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *modelFile != "" {
		cfg.ModelPath = *modelFile
	}
	if *cacheDir != "" {
		cfg.CachePath = *cacheDir
	}
	if *startOffline {
		cfg.StartOffline = true
	}

	hazards, err := hazard.OpenStore(cfg.HazardDBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer hazards.Close()

	// the online scorer is optional: without an artifact the plain
	// distance-weighted search serves every request
	var onlineScorer service.Scorer
	if model, err := scorer.LoadModel(cfg.ModelPath); err != nil {
		log.Printf("scorer model not loaded, routing without ML weights: %v", err)
	} else {
		onlineScorer = model
	}

	fetcher := osrm.NewClient(cfg.OSRMBaseURL)
	geocoder := geocode.NewClient(cfg.NominatimBaseURL)

	routingSvc := service.NewRoutingService(fetcher, geocoder, onlineScorer,
		func() (service.RouteCache, error) { return kv.OpenRouteCache(cfg.CachePath) },
		func() (service.Scorer, error) { return scorer.LoadModel(cfg.ModelPath) })

	if cfg.StartOffline {
		if _, err := routingSvc.ToggleOfflineMode(context.Background(), true); err != nil {
			log.Fatal(err)
		}
	}

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	rest.RoutingRouter(r, routingSvc, geocoder, hazards, m)

	st := routingSvc.Status()
	fmt.Printf("\nResQMap routing engine ready (mode: %s, model loaded: %t)", st.Mode, st.ModelLoaded)
	fmt.Printf("\nserver started at %s\n", cfg.ListenAddr)

	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}
