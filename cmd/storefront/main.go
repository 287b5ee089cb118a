package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/sweet-shop/internal/adapter/remote"
	"github.com/rl1809/sweet-shop/internal/adapter/storage"
	"github.com/rl1809/sweet-shop/internal/config"
	"github.com/rl1809/sweet-shop/internal/core/storefront"
	"github.com/rl1809/sweet-shop/internal/port"
)

func main() {
	envFile := pflag.String("env-file", ".env", "optional .env file to load")
	apiURL := pflag.String("api", "", "REST base URL (overrides SWEETSHOP_API)")
	grpcAddr := pflag.String("grpc", "", "gRPC address, preferred over REST when set (overrides SWEETSHOP_GRPC)")
	sessionFile := pflag.String("session-file", "", "session file (overrides SWEETSHOP_SESSION_FILE)")
	redisAddr := pflag.String("redis-addr", "", "keep the session in Redis instead of a file (overrides SWEETSHOP_REDIS_ADDR)")
	profile := pflag.String("profile", "", "session profile name (overrides SWEETSHOP_PROFILE)")
	pageSize := pflag.Int("page-size", 0, "catalog page size (overrides SWEETSHOP_PAGE_SIZE)")
	clearOnFailure := pflag.Bool("clear-on-failure", false, "clear edit buffers even when a mutation fails")
	pflag.Parse()

	log.SetFlags(0)
	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatalf("failed to load %s: %v", *envFile, err)
	}
	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	flags := pflag.CommandLine
	if flags.Changed("api") {
		cfg.APIURL = *apiURL
	}
	if flags.Changed("grpc") {
		cfg.GRPCAddr = *grpcAddr
	}
	if flags.Changed("session-file") {
		cfg.SessionFile = *sessionFile
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = *redisAddr
	}
	if flags.Changed("profile") {
		cfg.Profile = *profile
	}
	if flags.Changed("page-size") {
		cfg.PageSize = *pageSize
	}
	if flags.Changed("clear-on-failure") {
		cfg.ClearOnFailure = *clearOnFailure
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := sessionStore(ctx, cfg)
	defer closeStore()

	client, closeClient := inventoryClient(cfg)
	defer closeClient()

	shop := storefront.New(client, store, storefront.Options{
		PageSize:              cfg.PageSize,
		ClearBuffersOnFailure: cfg.ClearOnFailure,
	})

	r := newREPL(shop, os.Stdin, os.Stdout)
	loggedIn, err := shop.Start(ctx)
	switch {
	case errors.Is(err, storefront.ErrSessionExpired):
		fmt.Fprintln(r.out, "Stored session has expired, please log in again.")
	case err != nil:
		fmt.Fprintf(r.out, "error: %v\n", err)
	case loggedIn:
		fmt.Fprintf(r.out, "Welcome back, %s.\n", shop.Session().Session().Email)
		r.printCatalog()
	default:
		fmt.Fprintln(r.out, "Not logged in. Type 'login <email>' or 'register <email>'.")
	}

	r.run(ctx)
}

func sessionStore(ctx context.Context, cfg *config.ClientConfig) (port.SessionStore, func()) {
	if cfg.RedisAddr == "" {
		return storage.NewFileSessionStore(cfg.SessionFile), func() {}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	return storage.NewRedisSessionStore(rdb, cfg.Profile), func() { rdb.Close() }
}

func inventoryClient(cfg *config.ClientConfig) (port.InventoryService, func()) {
	if cfg.GRPCAddr == "" {
		return remote.NewHTTPClient(cfg.APIURL, nil), func() {}
	}

	conn, err := grpc.NewClient(cfg.GRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect grpc: %v", err)
	}
	return remote.NewGRPCClient(conn), func() { conn.Close() }
}
