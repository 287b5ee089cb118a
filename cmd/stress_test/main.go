package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/sweet-shop/internal/adapter/remote"
	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

func main() {
	apiURL := pflag.String("api", "http://127.0.0.1:8000", "REST base URL")
	grpcAddr := pflag.String("grpc", "", "gRPC address; overrides --api when set")
	adminEmail := pflag.String("admin-email", os.Getenv("ADMIN_EMAIL"), "admin account used to stock the item")
	adminPassword := pflag.String("admin-password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	initialStock := pflag.Int("stock", 20, "initial stock of the test item")
	totalRequests := pflag.Int("requests", 50, "concurrent purchase requests")
	pflag.Parse()

	ctx := context.Background()

	var client port.InventoryService
	if *grpcAddr != "" {
		conn, err := grpc.NewClient(*grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Fatalf("failed to connect grpc: %v", err)
		}
		defer conn.Close()
		client = remote.NewGRPCClient(conn)
	} else {
		client = remote.NewHTTPClient(*apiURL, nil)
	}

	admin, err := client.Login(ctx, *adminEmail, *adminPassword)
	if err != nil {
		log.Fatalf("failed to log in as admin: %v", err)
	}

	// Create a fresh item for this run
	item, err := client.CreateItem(ctx, admin.Token, domain.ItemFields{
		Name:     fmt.Sprintf("Stress Ladoo %d", time.Now().UnixNano()),
		Category: domain.CategoryIndian,
		Price:    1,
		Quantity: *initialStock,
	})
	if err != nil {
		log.Fatalf("failed to create item: %v", err)
	}
	defer client.DeleteItem(ctx, admin.Token, item.ID)

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if _, err := client.PurchaseItem(ctx, admin.Token, item.ID); err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()
	wantSuccess := min(*initialStock, *totalRequests)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if int(success) == wantSuccess && int(fail) == *totalRequests-wantSuccess {
		fmt.Printf("PASS: Exactly %d purchases succeeded, %d failed\n", wantSuccess, fail)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			wantSuccess, *totalRequests-wantSuccess, success, fail)
	}

	// Verify final stock on the server
	items, err := client.ListItems(ctx, admin.Token)
	if err != nil {
		log.Fatalf("failed to list items: %v", err)
	}
	finalStock := -1
	for _, it := range items {
		if it.ID == item.ID {
			finalStock = it.Quantity
		}
	}
	fmt.Printf("Final Stock:      %d\n", finalStock)

	if finalStock == *initialStock-wantSuccess {
		fmt.Printf("PASS: Stock depleted to %d\n", finalStock)
	} else {
		fmt.Printf("FAIL: Expected stock %d, got %d\n", *initialStock-wantSuccess, finalStock)
	}
}
