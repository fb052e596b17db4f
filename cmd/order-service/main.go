// cmd/order-service/main.go
package main

import (
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"korber/internal/pkg/bootstrap"
	"korber/internal/pkg/db"
	"korber/internal/pkg/httpclient"
	"korber/internal/pkg/logger"
	"korber/internal/pkg/mq"
	"korber/internal/service/order/application"
	"korber/internal/service/order/infrastructure"
	"korber/internal/service/order/infrastructure/adapter"
	"korber/internal/service/order/interfaces"
)

const serviceName = "order-service"

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	gormDB, err := db.OpenMySQL(cfg.Infra.Mysql.Addr, cfg.Infra.Mysql.User, cfg.Infra.Mysql.Password, cfg.Infra.Mysql.Database)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	orderRepo := infrastructure.NewGormOrderRepository(gormDB)

	kafkaWriter := mq.NewKafkaWriter(strings.Split(cfg.Infra.Kafka.Brokers, ","), cfg.App.Order.NotificationTopic)
	notifier := adapter.NewNotificationKafkaAdapter(kafkaWriter)
	defer notifier.Close()

	checkTimeout := time.Duration(cfg.App.Order.CheckTimeoutMs) * time.Millisecond
	reserveTimeout := time.Duration(cfg.App.Order.ReserveTimeoutMs) * time.Millisecond

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			// 服务发现: Nacos 启用时走注册中心，否则用静态地址表
			var resolver httpclient.Resolver
			if appCtx.Nacos != nil {
				resolver = appCtx.Nacos
			} else {
				resolver = httpclient.StaticResolver(cfg.App.Order.StaticServices)
			}
			client := httpclient.NewClient(otel.Tracer(serviceName), resolver)
			inventory := adapter.NewInventoryHTTPAdapter(client)

			service := application.NewOrderService(orderRepo, inventory, notifier, checkTimeout, reserveTimeout)
			handler := interfaces.NewOrderHandler(service)
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
