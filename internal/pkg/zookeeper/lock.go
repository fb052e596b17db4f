// internal/pkg/zookeeper/lock.go
package zookeeper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/korber/locks" // 所有分布式锁的根节点

// DistributedLock 基于临时顺序节点实现的分布式互斥锁。
// 同一个 resourceID 上的竞争者按节点序号排队，只有序号最小的持有锁，
// 其余各自只监听自己的前驱节点，避免惊群。
type DistributedLock struct {
	conn     *Conn
	path     string // 锁的父路径，例如 /korber/locks/product-1002
	lockNode string // 成功获取锁后自己创建的节点路径
}

// NewDistributedLock 创建一个针对 resourceID 的分布式锁实例。
func NewDistributedLock(conn *Conn, resourceID string) (*DistributedLock, error) {
	lockPath := lockRoot + "/" + resourceID
	if err := conn.EnsurePath(lockPath); err != nil {
		return nil, fmt.Errorf("failed to ensure lock path %s: %w", lockPath, err)
	}
	return &DistributedLock{conn: conn, path: lockPath}, nil
}

// Lock 尝试获取锁，获取不到则阻塞等待，直到拿到锁或 ctx 结束。
func (l *DistributedLock) Lock(ctx context.Context) error {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.Create(l.path+"/lock-", []byte(""), zk.FlagEphemeral|zk.FlagSequence, zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 取出所有竞争者并排序
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		// 3. 自己是最小节点即持有锁
		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// 4. 否则监听前一个节点
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		_, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			// 前驱节点刚好被删除，回到循环重新竞争
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-ctx.Done():
			// 放弃排队，删掉自己的节点以免挡住后面的竞争者
			_ = l.conn.Delete(l.lockNode, -1)
			l.lockNode = ""
			return ctx.Err()
		}
	}
}

// Unlock 释放锁。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
