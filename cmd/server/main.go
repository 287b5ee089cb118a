package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"

	"github.com/rl1809/sweet-shop/internal/adapter/auth"
	"github.com/rl1809/sweet-shop/internal/adapter/handler"
	"github.com/rl1809/sweet-shop/internal/adapter/messaging"
	"github.com/rl1809/sweet-shop/internal/adapter/rpc"
	"github.com/rl1809/sweet-shop/internal/adapter/storage"
	"github.com/rl1809/sweet-shop/internal/config"
	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/core/service"
	"github.com/rl1809/sweet-shop/internal/port"
)

func main() {
	envFile := pflag.String("env-file", ".env", "optional .env file to load")
	httpPort := pflag.String("http-port", "", "REST listen port (overrides HTTP_PORT)")
	grpcPort := pflag.String("grpc-port", "", "gRPC listen port (overrides GRPC_PORT)")
	mysqlDSN := pflag.String("mysql-dsn", "", "MySQL DSN (overrides MYSQL_DSN)")
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatalf("failed to load %s: %v", *envFile, err)
	}
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if pflag.CommandLine.Changed("http-port") {
		cfg.HTTPPort = *httpPort
	}
	if pflag.CommandLine.Changed("grpc-port") {
		cfg.GRPCPort = *grpcPort
	}
	if pflag.CommandLine.Changed("mysql-dsn") {
		cfg.MySQLDSN = *mysqlDSN
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	var (
		items port.ItemRepository
		users port.UserRepository
		db    *sql.DB
	)
	if cfg.MySQLDSN != "" {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("failed to ping mysql: %v", err)
		}
		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
		items, users = mysqlAdapter, mysqlAdapter
		log.Println("connected to mysql")
	} else {
		memory := storage.NewMemoryAdapter()
		items, users = memory, memory
		log.Println("MYSQL_DSN not set, using in-memory storage")
	}

	// Initialize service
	tokens := auth.NewJWTTokens(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	inventoryService := service.NewInventoryService(items, users, tokens, hasher, cfg.QueueSize)

	if cfg.AdminEmail != "" {
		if err := inventoryService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		log.Printf("admin account: %s", cfg.AdminEmail)
	}

	// Initialize event publisher
	var publisher port.EventPublisher = messaging.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = messaging.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Printf("publishing events to kafka topic %s", cfg.KafkaTopic)
	}

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, inventoryService.Events(), publisher)
		}(i)
	}
	log.Printf("started %d workers", cfg.WorkerCount)

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(logUnary))
	rpc.RegisterInventoryServer(grpcServer, handler.NewGRPCHandler(inventoryService))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on :%s", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	router := mux.NewRouter()
	handler.NewHTTPHandler(inventoryService).RegisterRoutes(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// Close event queue and wait for workers to flush
	inventoryService.Close()
	wg.Wait()
	log.Println("workers stopped")

	if err := publisher.Close(); err != nil {
		log.Printf("failed to close publisher: %v", err)
	}
	if db != nil {
		db.Close()
	}
	log.Println("connections closed")
}

func workerLoop(id int, events <-chan domain.InventoryEvent, publisher port.EventPublisher) {
	for event := range events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if err := publisher.PublishInventoryEvent(ctx, event); err != nil {
			log.Printf("worker %d: failed to publish %s for item %d: %v", id, event.Type, event.ItemID, err)
		}

		cancel()
	}
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := next(ctx, req)
	if err != nil {
		log.Printf("grpc %s failed in %v: %v", info.FullMethod, time.Since(start), err)
	}
	return resp, err
}
