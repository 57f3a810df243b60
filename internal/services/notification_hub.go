package services

import (
	"sync"
	"time"

	"sinkrona/internal/models"
	"sinkrona/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	// 单次写入超时
	hubWriteTimeout = 10 * time.Second
	// 心跳间隔，保持连接活跃
	hubPingInterval = 60 * time.Second
	// 每个连接的发送队列长度，队列满则丢弃该条通知
	hubSendQueueSize = 16
)

// HubClient 一个已登记的WebSocket连接
// gorilla/websocket要求同一连接同时只能有一个写者，
// 所有写入都经过send队列由唯一的写goroutine串行执行
type HubClient struct {
	userID uint
	conn   *websocket.Conn
	send   chan *models.Notifikasi
	once   sync.Once
}

// close 关闭发送队列，终止写goroutine；可安全重复调用
func (c *HubClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// NotificationHub 按用户维护的WebSocket连接集合
// 新通知产生时向该用户的所有在线连接推送，写入失败即断开
type NotificationHub struct {
	mu    sync.RWMutex
	conns map[uint]map[*HubClient]bool
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		conns: make(map[uint]map[*HubClient]bool),
	}
}

// Register 登记用户的一个连接并启动其写goroutine
func (h *NotificationHub) Register(userID uint, conn *websocket.Conn) *HubClient {
	client := &HubClient{
		userID: userID,
		conn:   conn,
		send:   make(chan *models.Notifikasi, hubSendQueueSize),
	}

	h.mu.Lock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*HubClient]bool)
	}
	h.conns[userID][client] = true
	h.mu.Unlock()

	go h.writePump(client)
	return client
}

// Unregister 移除连接并关闭其发送队列
// 队列在持有写锁、连接已移出map之后才关闭，Push不会写到已关闭的队列
func (h *NotificationHub) Unregister(client *HubClient) {
	h.mu.Lock()
	if set, ok := h.conns[client.userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.conns, client.userID)
		}
	}
	client.close()
	h.mu.Unlock()
}

// Push 向用户的所有在线连接推送一条通知
// 只向发送队列投递，不直接写连接，永不阻塞调用方；
// 队列满（客户端消费过慢）时丢弃该条，通知推送是尽力而为的
func (h *NotificationHub) Push(userID uint, notifikasi *models.Notifikasi) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.conns[userID] {
		select {
		case client.send <- notifikasi:
		default:
			logger.GetLogger().Debugf("通知发送队列已满，丢弃消息 (user_id=%d)", userID)
		}
	}
}

// writePump 连接的唯一写者，串行消费发送队列并定期发送心跳
func (h *NotificationHub) writePump(client *HubClient) {
	pingTicker := time.NewTicker(hubPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case notifikasi, ok := <-client.send:
			if !ok {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
			if err := client.conn.WriteJSON(notifikasi); err != nil {
				logger.GetLogger().Debugf("通知推送失败，断开连接: %v (user_id=%d)", err, client.userID)
				h.Unregister(client)
				client.conn.Close()
				return
			}

		case <-pingTicker.C:
			client.conn.SetWriteDeadline(time.Now().Add(hubWriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unregister(client)
				client.conn.Close()
				return
			}
		}
	}
}

// ConnectionCount 当前用户的在线连接数
func (h *NotificationHub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// 全局通知hub单例
var (
	globalHub     *NotificationHub
	globalHubOnce sync.Once
)

// GetNotificationHub 获取全局通知hub
func GetNotificationHub() *NotificationHub {
	globalHubOnce.Do(func() {
		globalHub = NewNotificationHub()
	})
	return globalHub
}
