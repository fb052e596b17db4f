// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"korber/internal/pkg/logger"
)

// Config 是两个服务共用的配置根。
// 基础设施地址集中在 Infra 下，业务开关集中在 App 下。
type Config struct {
	Infra struct {
		Mysql struct {
			Addr     string `yaml:"addr"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers string `yaml:"brokers"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Addrs            string `yaml:"addrs"`
			SessionTimeoutMs int    `yaml:"session_timeout_ms"`
		} `yaml:"zookeeper"`
		Nacos struct {
			Enabled     bool   `yaml:"enabled"`
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
	} `yaml:"infra"`

	App struct {
		LogLevel string `yaml:"log_level"`

		Inventory struct {
			// 分配策略: OLDEST_FIRST (默认, 先过期先出) / NEWEST_FIRST
			Strategy string `yaml:"strategy"`
			// 单商品写临界区的实现: local (单节点) / zookeeper (多节点)
			LockMode string `yaml:"lock_mode"`
			// 预占回执的幂等去重窗口
			ReceiptTTLMinutes int `yaml:"receipt_ttl_minutes"`
		} `yaml:"inventory"`

		Order struct {
			CheckTimeoutMs    int    `yaml:"check_timeout_ms"`
			ReserveTimeoutMs  int    `yaml:"reserve_timeout_ms"`
			NotificationTopic string `yaml:"notification_topic"`
			// Nacos 关闭时的静态服务地址表 (服务名 -> base URL)
			StaticServices map[string]string `yaml:"static_services"`
		} `yaml:"order"`
	} `yaml:"app"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// Init 加载配置文件。路径取 CONFIG_PATH 环境变量，默认 ./config.yaml。
// 必须在 StartService 之前调用。
func Init() {
	configOnce.Do(func() {
		path := getEnv("CONFIG_PATH", "config.yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Logger().Fatal().Err(err).Str("path", path).Msg("failed to read config file")
		}
		if err := yaml.Unmarshal(data, &currentConfig); err != nil {
			logger.Logger().Fatal().Err(err).Str("path", path).Msg("failed to parse config file")
		}
		applyDefaults(&currentConfig)
	})
}

// GetCurrentConfig 返回已加载的配置。
func GetCurrentConfig() *Config {
	return &currentConfig
}

func applyDefaults(c *Config) {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.Inventory.LockMode == "" {
		c.App.Inventory.LockMode = "local"
	}
	if c.App.Inventory.ReceiptTTLMinutes <= 0 {
		c.App.Inventory.ReceiptTTLMinutes = 24 * 60
	}
	if c.App.Order.CheckTimeoutMs <= 0 {
		c.App.Order.CheckTimeoutMs = 3000
	}
	if c.App.Order.ReserveTimeoutMs <= 0 {
		c.App.Order.ReserveTimeoutMs = 5000
	}
	if c.App.Order.NotificationTopic == "" {
		c.App.Order.NotificationTopic = "order-notifications"
	}
	if c.Infra.Zookeeper.SessionTimeoutMs <= 0 {
		c.Infra.Zookeeper.SessionTimeoutMs = 5000
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
