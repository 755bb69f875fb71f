package main

import (
	"context"
	"log"

	"saleshub-system/config"
	"saleshub-system/internal/audit"
	"saleshub-system/internal/database"
	"saleshub-system/internal/store"
	"saleshub-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)

	publisher := audit.NewRedisPublisher(rdb)
	listener := audit.NewListener(db, rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	stores := appStores{
		users:     store.NewUserStore(db),
		employees: store.NewEmployeeStore(db),
		products:  store.NewProductStore(db, rdb),
		customers: store.NewCustomerStore(db),
	}
	stores.sales = store.NewSalesStore(db, stores.products, publisher)

	r := buildRouter(cfg, rdb, stores, listener)

	addr := ":" + cfg.Server.Port
	log.Printf("Starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
