package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"dealradar/internal/config"
	"dealradar/internal/db"
	"dealradar/internal/logging"
	"dealradar/internal/routes"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("dealradar starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	if err := db.InitPostgres(cfg.DSN()); err != nil {
		logging.Error("Failed to connect to Postgres", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	logging.Info("Connected to Postgres")

	upSince := time.Now()

	router := routes.RegisterRoutes(cfg, upSince)

	// Metrics endpoint lives outside the chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	logging.Info("Server starting",
		"port", cfg.Port,
		"environment", cfg.AppEnv,
	)

	log.Fatal(http.ListenAndServe(":"+cfg.Port, mux))
}
