// internal/service/inventory/infrastructure/zk_locker.go
package infrastructure

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"korber/internal/pkg/zookeeper"
)

// ZkProductLocker 用 ZooKeeper 分布式锁实现跨实例的商品临界区。
// 多个 inventory-service 实例共享同一套批次表时必须启用。
type ZkProductLocker struct {
	conn *zookeeper.Conn
}

func NewZkProductLocker(conn *zookeeper.Conn) *ZkProductLocker {
	return &ZkProductLocker{conn: conn}
}

func (l *ZkProductLocker) Lock(ctx context.Context, productID int64) (func(), error) {
	lock, err := zookeeper.NewDistributedLock(l.conn, fmt.Sprintf("product-%d", productID))
	if err != nil {
		return nil, errors.Wrapf(err, "create zk lock for product %d", productID)
	}
	if err := lock.Lock(ctx); err != nil {
		return nil, errors.Wrapf(err, "acquire zk lock for product %d", productID)
	}
	return func() { _ = lock.Unlock() }, nil
}
