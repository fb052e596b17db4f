// internal/service/inventory/infrastructure/local_locker.go
package infrastructure

import (
	"context"
	"sync"
)

// LocalProductLocker 用进程内互斥量实现按商品的单写者临界区。
// 适用于单实例部署；多实例部署用 ZkProductLocker。
type LocalProductLocker struct {
	mu    sync.Mutex
	locks map[int64]*productLock
}

type productLock struct {
	ch   chan struct{} // 容量 1 的信号量
	refs int
}

func NewLocalProductLocker() *LocalProductLocker {
	return &LocalProductLocker{locks: make(map[int64]*productLock)}
}

// Lock 阻塞直到拿到 productID 的锁或 ctx 结束。
// 用 channel 而不是 sync.Mutex 做信号量，是为了能响应 ctx 取消。
func (l *LocalProductLocker) Lock(ctx context.Context, productID int64) (func(), error) {
	l.mu.Lock()
	pl, ok := l.locks[productID]
	if !ok {
		pl = &productLock{ch: make(chan struct{}, 1)}
		l.locks[productID] = pl
	}
	pl.refs++
	l.mu.Unlock()

	select {
	case pl.ch <- struct{}{}:
		return func() {
			<-pl.ch
			l.release(productID, pl)
		}, nil
	case <-ctx.Done():
		l.release(productID, pl)
		return nil, ctx.Err()
	}
}

func (l *LocalProductLocker) release(productID int64, pl *productLock) {
	l.mu.Lock()
	pl.refs--
	if pl.refs == 0 {
		delete(l.locks, productID)
	}
	l.mu.Unlock()
}
