// cmd/inventory-service/main.go
package main

import (
	"strings"
	"time"

	"korber/internal/pkg/bootstrap"
	"korber/internal/pkg/db"
	"korber/internal/pkg/logger"
	"korber/internal/pkg/redis"
	"korber/internal/pkg/zookeeper"
	"korber/internal/service/inventory/application"
	"korber/internal/service/inventory/domain"
	"korber/internal/service/inventory/infrastructure"
	"korber/internal/service/inventory/interfaces"
)

const serviceName = "inventory-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	gormDB, err := db.OpenMySQL(cfg.Infra.Mysql.Addr, cfg.Infra.Mysql.User, cfg.Infra.Mysql.Password, cfg.Infra.Mysql.Database)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	batchRepo := infrastructure.NewGormBatchRepository(gormDB)

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to redis")
	}
	receiptTTL := time.Duration(cfg.App.Inventory.ReceiptTTLMinutes) * time.Minute
	receiptStore := infrastructure.NewRedisReceiptStore(redisClient, receiptTTL)

	var locker domain.ProductLocker
	switch cfg.App.Inventory.LockMode {
	case "zookeeper":
		zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Addrs, time.Duration(cfg.Infra.Zookeeper.SessionTimeoutMs)*time.Millisecond)
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to connect to zookeeper")
		}
		locker = infrastructure.NewZkProductLocker(zkConn)
	default:
		locker = infrastructure.NewLocalProductLocker()
	}

	strategy := domain.StrategyFor(domain.StrategyKind(strings.ToUpper(cfg.App.Inventory.Strategy)))
	if string(strategy.Kind()) != strings.ToUpper(cfg.App.Inventory.Strategy) && cfg.App.Inventory.Strategy != "" {
		logger.Logger().Warn().
			Str("configured", cfg.App.Inventory.Strategy).
			Str("effective", string(strategy.Kind())).
			Msg("unknown allocation strategy, falling back to default")
	}

	service := application.NewInventoryService(batchRepo, receiptStore, locker, strategy)
	handler := interfaces.NewInventoryHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
