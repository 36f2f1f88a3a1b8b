package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-retail-pos/internal/cache"
	"go-retail-pos/internal/config"
	"go-retail-pos/internal/handler"
	"go-retail-pos/internal/idempotency"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/repository/memstore"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/database"
	"go-retail-pos/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	jwt.Init(cfg.JWTSecret, cfg.JWTTTL)

	// 2. Setup Store
	store, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Setup Redis (optional)
	rdb := openRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}
	guard := idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	rollups := cache.New(rdb, cfg.SalesCacheTTL)

	// 4. Setup WebSocket Hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := ws.NewHub()
	go wsHub.Run(hubCtx)

	// 5. Dependency Injection (Wiring Layers)
	log := slog.Default()
	stockService := service.NewStockService(store, wsHub, log)
	catalogService := service.NewCatalogService(store, wsHub, log)
	orderService := service.NewOrderService(store, wsHub, log)
	receiptService := service.NewReceiptService(store, guard, rollups, wsHub, log)
	reportService := service.NewReportService(store, rollups, log)
	cashService := service.NewCashService(store, wsHub, log)

	handlers := handler.Handlers{
		Inventory: handler.NewInventoryHandler(catalogService, stockService),
		Orders:    handler.NewOrderHandler(orderService),
		Receipts:  handler.NewReceiptHandler(receiptService),
		Cash:      handler.NewCashHandler(cashService),
		Dashboard: handler.NewDashboardHandler(reportService),
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	handler.RegisterRoutes(app, handlers)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	// ?store=store_a limits events to one store
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		select {
		case wsHub.Register <- ws.Subscription{Conn: c, Store: c.Query("store")}:
		case <-hubCtx.Done():
			return
		}
		defer func() {
			select {
			case wsHub.Unregister <- c:
			case <-hubCtx.Done():
			}
		}()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopHub()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server forced to shutdown", slog.Any("error", err))
	}
	slog.Info("server exited")
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return memstore.New(), nil
	}
	db, err := database.ConnectDB(cfg.DSN())
	if err != nil {
		return nil, err
	}
	// Auto Migrate (use a dedicated migration tool in production)
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}

// openRedis returns nil when REDIS_ADDR is empty or unreachable; idempotency
// keys and rollup caching are then disabled.
func openRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		slog.Info("redis disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, continuing without it", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
		_ = rdb.Close()
		return nil
	}
	return rdb
}
