package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-raffle-api/config"
	"go-raffle-api/internal/cache"
	"go-raffle-api/internal/clock"
	"go-raffle-api/internal/database"
	"go-raffle-api/internal/handler"
	"go-raffle-api/internal/queue"
	"go-raffle-api/internal/repository"
	"go-raffle-api/internal/service"
	"go-raffle-api/internal/worker"
	"go-raffle-api/pkg/logger"
	"go-raffle-api/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.WithComponent("main")
	defer logger.L.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis client 由票池與佇列共用，有任一需要才建立
	var rdb *redis.Client
	if cfg.Store.Backend == config.StoreRedis || cfg.Queue.Backend == config.QueueRedis {
		var err error
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			log.Fatal("init redis failed", zap.Error(err))
		}
		defer rdb.Close()
	}

	var ticketRepo repository.TicketRepository
	var saleLogRepo repository.SaleLogRepository

	switch cfg.Store.Backend {
	case config.StorePostgres:
		pool, err := database.InitDatabase(&cfg.Database)
		if err != nil {
			log.Fatal("init database failed", zap.Error(err))
		}
		defer pool.Close()

		if err := repository.EnsureSchema(ctx, pool); err != nil {
			log.Fatal("ensure schema failed", zap.Error(err))
		}
		ticketRepo = repository.NewTicketRepository(pool)
		saleLogRepo = repository.NewSaleLogRepository(pool)
	case config.StoreRedis:
		// 流水帳沒有 Redis 版，搭配記憶體版使用
		ticketRepo = cache.NewRedisTicketStore(rdb)
		saleLogRepo = repository.NewMemorySaleLogRepository()
	case config.StoreMemory:
		ticketRepo = repository.NewMemoryTicketRepository()
		saleLogRepo = repository.NewMemorySaleLogRepository()
	default:
		log.Fatal("unknown store backend", zap.String("backend", cfg.Store.Backend))
	}

	if err := ticketRepo.EnsurePool(ctx, cfg.Pool.Size); err != nil {
		log.Fatal("ensure ticket pool failed", zap.Error(err))
	}

	var saleQueue queue.SaleQueue
	switch cfg.Queue.Backend {
	case config.QueueRedis:
		var err error
		saleQueue, err = queue.NewRedisStreamSaleQueue(rdb, "", nil)
		if err != nil {
			log.Fatal("init sale queue failed", zap.Error(err))
		}
	case config.QueueMemory:
		saleQueue = queue.NewSaleQueue(256)
	default:
		log.Fatal("unknown queue backend", zap.String("backend", cfg.Queue.Backend))
	}

	clk := clock.NewSystem()

	allocationService := service.NewAllocationService(ticketRepo, saleQueue, clk, cfg.Pool.UnitPrice)
	catalogService := service.NewCatalogService(ticketRepo, cfg.Pool.UnitPrice)
	adminService := service.NewAdminService(ticketRepo, saleLogRepo)

	saleWorker := worker.NewSaleWorker(saleLogRepo, saleQueue, clk)
	if err := saleWorker.Start(ctx); err != nil {
		log.Fatal("start sale worker failed", zap.Error(err))
	}

	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	handler.NewTicketHandler(allocationService, catalogService, cfg.Auth.PurchasePassword).RegisterRoutes(router)
	handler.NewAdminHandler(adminService, catalogService, cfg.Auth.AdminToken).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("store_backend", cfg.Store.Backend),
			zap.String("queue_backend", cfg.Queue.Backend),
			zap.Int("pool_size", cfg.Pool.Size))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel() // 停止 worker 與佇列訂閱

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
