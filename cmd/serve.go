package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	httpapi "qrmenu/internal/api/http"
	"qrmenu/internal/api/ws"
	"qrmenu/internal/auth"
	"qrmenu/internal/cart"
	"qrmenu/internal/events"
	"qrmenu/internal/resolver"
	"qrmenu/internal/service"
	"qrmenu/internal/storage"
	menusync "qrmenu/internal/sync"
)

const (
	tokenTTL = 24 * time.Hour
	cartTTL  = 2 * time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the menu server",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfigOrExit()

	db := cfg.MustInitPostgres()
	defer db.Close()

	store := storage.NewMenuStore(db)
	if err := store.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	rdb := cfg.MustInitRedis()
	defer rdb.Close()

	cache := storage.NewRedisCache(rdb, cfg.CacheTTL)
	stats := storage.NewStatsStore(rdb)

	var publisher service.EventPublisher
	if cfg.KafkaBroker != "" {
		writer := cfg.NewKafkaWriter()
		defer writer.Close()
		publisher = events.NewPublisher(writer)

		reader := cfg.NewKafkaReader()
		defer reader.Close()
		go events.NewStatsConsumer(reader, stats).Start(context.Background())
	} else {
		log.Println("Kafka broker not configured; menu events stay local")
	}

	broker := menusync.NewBroker()
	debounce := menusync.NewDebouncer(cfg.DebounceWindow)
	tokens := auth.NewTokenManager(cfg.JWTSecret, tokenTTL)

	menus := service.NewMenuService(store, cache, publisher, broker)
	owners := service.NewAuthService(store, tokens)

	sources := []resolver.Source{&resolver.StoreSource{Store: store}}
	if cfg.StaticDir != "" {
		sources = append(sources, &resolver.StaticFileSource{Dir: cfg.StaticDir})
	}
	if cfg.StaticBaseURL != "" {
		sources = append(sources, resolver.NewStaticHTTPSource(cfg.StaticBaseURL))
	}
	menuResolver := resolver.New(cache, cfg.DefaultRestaurant, cfg.StaticDir, sources...)

	hub := ws.NewHub(tokens, store, store, broker, menus, debounce)

	handler := &httpapi.Handler{
		Resolver:  menuResolver,
		Menus:     menus,
		Auth:      owners,
		QR:        service.NewQRGenerator(cfg.BaseURL),
		Carts:     cart.NewSessionStore(cartTTL),
		Stats:     stats,
		Tokens:    tokens,
		DefaultID: cfg.DefaultRestaurant,
		StaticDir: cfg.StaticDir,
	}

	httpapi.StartServer(fmt.Sprintf(":%d", cfg.Port), httpapi.NewRouter(handler, hub))
}
