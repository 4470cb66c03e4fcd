package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/nmtamm/IntelligentTourPlanner/internal/adapters/cache"
	"github.com/nmtamm/IntelligentTourPlanner/internal/adapters/currency"
	"github.com/nmtamm/IntelligentTourPlanner/internal/adapters/geocode"
	"github.com/nmtamm/IntelligentTourPlanner/internal/adapters/repositories"
	"github.com/nmtamm/IntelligentTourPlanner/internal/adapters/routing"
	"github.com/nmtamm/IntelligentTourPlanner/internal/api"
	"github.com/nmtamm/IntelligentTourPlanner/internal/config"
	pgdb "github.com/nmtamm/IntelligentTourPlanner/internal/platform/db"
	"github.com/nmtamm/IntelligentTourPlanner/internal/ports"
	"github.com/nmtamm/IntelligentTourPlanner/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Nominatim, the route and exchange
// services, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/places.json")
	port := config.Get("PORT", "8080")
	userAgent := config.Get("GEOCODER_USER_AGENT", "IntelligentTourPlanner/1.0")

	exchangeURL := os.Getenv("EXCHANGE_SERVICE_URL")
	if strings.TrimSpace(exchangeURL) == "" {
		log.Fatal("EXCHANGE_SERVICE_URL is required")
	}

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	// The Redis rate cache is optional; without it every conversion hits the
	// exchange service.
	var rateCache ports.RateCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rateCache = cache.NewRedisRateCache(redis.NewClient(&redis.Options{Addr: addr}), 0)
		log.Printf("rate cache enabled addr=%s", addr)
	}

	converter, err := currency.NewExchangeRateConverter(exchangeURL, rateCache)
	if err != nil {
		log.Fatal(err)
	}

	// When a shared Postgres instance is available (provisioned by dbtool)
	// the geocode cache lives there so every replica benefits from it.
	var geocodeCache geocode.Cache = cache.NewSqliteGeocodeCache(db)
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pg, err := pgdb.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pg.Close()
		geocodeCache = cache.NewSQLGeocodeCache(pg)
		log.Println("geocode cache backed by postgres")
	}

	geocoder, err := geocode.NewNominatimGeocoder(
		os.Getenv("NOMINATIM_URL"),
		userAgent,
		geocodeCache,
	)
	if err != nil {
		log.Fatal(err)
	}

	// Without a remote route service the planner falls back to the local
	// nearest-neighbor heuristic.
	var provider ports.RouteProvider
	if routeURL := os.Getenv("ROUTE_SERVICE_URL"); routeURL != "" {
		provider, err = routing.NewRemoteRouteProvider(routeURL, os.Getenv("ROUTE_SERVICE_API_KEY"))
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("ROUTE_SERVICE_URL not set; using local route optimization")
	}

	router := api.NewRouter(api.Deps{
		Trips:     repositories.NewSqliteTripRepository(db),
		Places:    repositories.NewSqlitePlaceRepository(db),
		Geocoder:  geocoder,
		Converter: converter,
		Planner:   services.NewRoutePlanner(provider),
		Resolver:  services.NewCostResolver(converter),
	})

	// Timeouts are tuned for cold-cache optimization (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	// Missing seed file is fine; the places table just stays empty.
	if _, err := os.Stat(seedPath); err != nil {
		log.Printf("no places seed at %q, skipping", seedPath)
		return nil
	}

	if err := repositories.SeedPlacesFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
