package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yasso2006/2M-perfume-store/internal/bus"
	"github.com/yasso2006/2M-perfume-store/internal/cart"
	"github.com/yasso2006/2M-perfume-store/internal/catalog"
	"github.com/yasso2006/2M-perfume-store/internal/checkout"
	h "github.com/yasso2006/2M-perfume-store/internal/http"
	"github.com/yasso2006/2M-perfume-store/internal/notify"
	"github.com/yasso2006/2M-perfume-store/internal/store"
)

type Config struct {
	HTTPPort        string
	StorageBackend  string // memory | redis | mongo
	RedisAddr       string
	MongoURI        string
	KafkaBrokers    string // empty disables the cross-process relay
	CatalogURL      string
	StoreAPIURL     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StorageBackend:  getEnv("STORAGE_BACKEND", "memory"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		CatalogURL:      getEnv("CATALOG_URL", "http://localhost:9000/api"),
		StoreAPIURL:     getEnv("STORE_API_URL", "http://localhost:9000/api"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.New()

	kv, closeKV, err := newKV(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to set up storage backend: %v", err)
	}
	defer closeKV()

	var publisher store.Publisher = b
	if cfg.KafkaBrokers != "" {
		relay := bus.NewRelay(b, strings.Split(cfg.KafkaBrokers, ",")...)
		defer relay.Close()
		go relay.Run(ctx)
		publisher = bus.Fanout{b, relay}
		log.Printf("cart relay enabled via %s", cfg.KafkaBrokers)
	}

	cartStore := store.NewCartStore(kv, publisher)

	catalogClient := catalog.NewClient(cfg.CatalogURL, cfg.RequestTimeout)
	storeAPI := checkout.NewHTTPClient(cfg.StoreAPIURL, cfg.RequestTimeout)

	// Each UI surface gets its own view model and notification queue. They
	// share nothing in memory; the store and the bus are the only couplings.
	catalogVM := cart.New(cartStore, b)
	catalogVM.Activate(ctx)
	defer catalogVM.Close()

	badgeVM := cart.New(cartStore, b)
	badgeVM.Activate(ctx)
	defer badgeVM.Close()

	checkoutVM := cart.New(cartStore, b)
	checkoutVM.Activate(ctx)
	defer checkoutVM.Close()

	catalogNotices := notify.NewScheduler()
	defer catalogNotices.Close()
	checkoutNotices := notify.NewScheduler()
	defer checkoutNotices.Close()

	orderService := checkout.NewService(cartStore, storeAPI, checkoutNotices)
	contactService := checkout.NewContactService(storeAPI, checkoutNotices)

	catalogHandler := h.NewCatalogHandler(catalogClient, catalogVM, catalogNotices)
	badgeHandler := h.NewBadgeHandler(badgeVM)
	checkoutHandler := h.NewCheckoutHandler(checkoutVM, orderService, contactService, checkoutNotices)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/catalog/notifications", catalogHandler.Notifications)

		r.Get("/cart/badge", badgeHandler.Get)

		r.Route("/cart", func(r chi.Router) {
			r.Post("/items", catalogHandler.AddToCart)
			r.Put("/items/{pos}/increase", checkoutHandler.IncreaseItem)
			r.Put("/items/{pos}/decrease", checkoutHandler.DecreaseItem)
			r.Delete("/items/{pos}", checkoutHandler.RemoveItem)
		})

		r.Get("/checkout", checkoutHandler.Get)
		r.Post("/checkout", checkoutHandler.SubmitOrder)
		r.Get("/checkout/notifications", checkoutHandler.Notifications)

		r.Post("/contact", checkoutHandler.SubmitContact)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s (storage=%s)", cfg.HTTPPort, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func newKV(ctx context.Context, cfg *Config) (store.KV, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		return store.NewRedisKV(client), func() { client.Close() }, nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if errDisconnect := client.Disconnect(disconnectCtx); errDisconnect != nil {
				log.Printf("mongo disconnect failed: %v", errDisconnect)
			}
		}
		return store.NewMongoKV(client.Database("storefront")), closeFn, nil
	default:
		return store.NewMemoryKV(), func() {}, nil
	}
}
