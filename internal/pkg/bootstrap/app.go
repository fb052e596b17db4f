// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"korber/internal/pkg/logger"
	"korber/internal/pkg/nacos"
	"korber/internal/pkg/tracing"
)

// AppCtx 是传给各服务路由注册函数的上下文。
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client // Nacos 未启用时为 nil
}

// AppInfo 包含启动一个服务所需的全部特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
}

// StartService 封装所有服务的通用启动和优雅关停逻辑：
// 日志、追踪、Nacos 注册、HTTP Server、信号处理。
func StartService(info AppInfo) {
	cfg := GetCurrentConfig()
	logger.Init(info.ServiceName, cfg.App.LogLevel)

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	var namingClient *nacos.Client
	var ip string
	if cfg.Infra.Nacos.Enabled {
		namingClient, err = nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		ip, err = outboundIP()
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := namingClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
			logger.Logger().Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: namingClient})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		logger.Logger().Info().Str("addr", server.Addr).Msgf("✅ %s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-quit:
		case <-gctx.Done():
			return nil
		}
		logger.Logger().Info().Msgf("🛑 shutting down %s...", info.ServiceName)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// 关停顺序: 先从注册中心摘除流量，再刷掉追踪缓冲，最后关 HTTP Server
		if namingClient != nil {
			if err := namingClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
				logger.Logger().Error().Err(err).Msg("error deregistering from nacos")
			}
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Logger().Error().Err(err).Msg("error shutting down tracer provider")
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Logger().Fatal().Err(err).Msgf("%s terminated abnormally", info.ServiceName)
	}
	logger.Logger().Info().Msgf("%s gracefully shut down", info.ServiceName)
}

// outboundIP 通过一次 UDP "拨号" 拿到本机对外的 IP，用于服务注册。
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
