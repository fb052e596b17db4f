// internal/pkg/zookeeper/conn.go
package zookeeper

import (
	"strings"
	"time"

	"github.com/go-zookeeper/zk"

	"korber/internal/pkg/logger"
)

// Conn 是对 zk.Conn 的薄封装，统一连接参数并压掉 zk 库自带的日志噪音。
type Conn struct {
	*zk.Conn
}

// Connect 建立到 ZooKeeper 集群的连接。addrs 格式为 "host1:2181,host2:2181"。
func Connect(addrs string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(strings.Split(addrs, ","), sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, err
	}
	logger.Logger().Info().Str("addrs", addrs).Msg("✅ connected to zookeeper")
	return &Conn{Conn: conn}, nil
}

// EnsurePath 逐级创建一个持久化路径，节点已存在不算错误。
func (c *Conn) EnsurePath(path string) error {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	current := ""
	for _, part := range parts {
		current += "/" + part
		_, err := c.Create(current, []byte(""), 0, zk.WorldACL(zk.PermAll))
		if err != nil && err != zk.ErrNodeExists {
			return err
		}
	}
	return nil
}
