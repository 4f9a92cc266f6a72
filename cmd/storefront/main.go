package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/session"
	"github.com/example/storefront/internal/shopapi"
	"github.com/example/storefront/internal/storage"
	"github.com/example/storefront/internal/store"
)

func main() {
	godotenv.Load()

	addr := getEnv("LISTEN_ADDR", ":8080")
	baseURL := getEnv("SHOP_API_URL", shopapi.DefaultBaseURL)

	log.Println("[Storefront] ========================================")
	log.Println("[Storefront] Storefront - Route Shop Client")
	log.Println("[Storefront] ========================================")
	log.Printf("[Storefront] Upstream: %s", baseURL)

	kv := openStateBackend()
	cch := openCacheBackend()
	publisher := openEventPublisher()
	defer publisher.Close()

	// Session and local store hydrate from persisted state before serving.
	sess := session.NewManager(kv)
	sess.Hydrate()

	local := store.New(kv)
	local.Load()
	log.Printf("[Storefront] Local cart: %d item(s), wishlist: %d",
		local.TotalItemCount(), len(local.Wishlist()))

	// Two upstream clients: catalog reads stay anonymous, account traffic
	// carries the session credential.
	public := shopapi.NewPublicClient(shopapi.Config{BaseURL: baseURL, Cache: cch})
	auth := shopapi.NewAuthClient(shopapi.Config{BaseURL: baseURL}, sess)

	cartSvc := shopapi.NewCartService(auth)
	orderSvc := shopapi.NewOrderService(auth)
	reconciler := checkout.NewReconciler(cartSvc, orderSvc, local, publisher)

	handlers := api.NewHandlers(api.Services{
		Products:   shopapi.NewProductService(public),
		Categories: shopapi.NewCategoryService(public),
		Brands:     shopapi.NewBrandService(public),
		RemoteCart: cartSvc,
		Wishlist:   shopapi.NewWishlistService(auth),
		Reviews:    shopapi.NewReviewService(auth),
		Orders:     orderSvc,
		Auth:       shopapi.NewAuthService(public, auth, sess),
		Local:      local,
		Session:    sess,
		Checkout:   reconciler,
		Draft:      checkout.NewAddressDraft(kv),
	})

	server := &http.Server{
		Addr:    addr,
		Handler: api.NewRouter(handlers, sess),
	}

	go func() {
		log.Printf("[Storefront] Server started on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[Storefront] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Storefront] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

// openStateBackend picks where local state lives: Postgres when DATABASE_URL
// is set, else JSON files under STATE_DIR.
func openStateBackend() storage.KV {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := storage.ConnectPostgres(connStr)
		if err != nil {
			log.Fatalf("[Storefront] Failed to connect to PostgreSQL: %v", err)
		}
		kv, err := storage.NewPostgresKV(db)
		if err != nil {
			log.Fatalf("[Storefront] Failed to prepare state table: %v", err)
		}
		log.Println("[Storefront] State: PostgreSQL")
		return kv
	}

	dir := getEnv("STATE_DIR", "./data")
	kv, err := storage.NewFileKV(dir)
	if err != nil {
		log.Fatalf("[Storefront] Failed to open state dir %s: %v", dir, err)
	}
	log.Printf("[Storefront] State: files under %s", dir)
	return kv
}

// openCacheBackend picks the read cache: Redis when configured, else
// in-process memory.
func openCacheBackend() cache.Cache {
	redisURL := os.Getenv("REDIS_URL")
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisURL != "" || redisAddr != "" {
		if c := cache.ConnectRedis(redisURL, redisAddr, os.Getenv("REDIS_PASSWORD")); c != nil {
			log.Println("[Storefront] Cache: Redis")
			return c
		}
		log.Println("[Storefront] Redis unavailable, falling back to memory cache")
	}
	log.Println("[Storefront] Cache: in-memory")
	return cache.NewMemory()
}

// openEventPublisher wires activity events to Kafka when brokers are
// configured; otherwise events are dropped.
func openEventPublisher() events.Publisher {
	brokersStr := os.Getenv("KAFKA_BROKERS")
	if brokersStr == "" {
		return events.Noop{}
	}
	topic := getEnv("KAFKA_TOPIC", "storefront-activity")
	log.Printf("[Storefront] Events: Kafka %s topic %s", brokersStr, topic)
	return events.NewKafkaPublisher(strings.Split(brokersStr, ","), topic)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
