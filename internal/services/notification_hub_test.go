package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sinkrona/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewNotificationHub()

	assert.Equal(t, 0, hub.ConnectionCount(1))

	clientA := hub.Register(1, &websocket.Conn{})
	clientB := hub.Register(1, &websocket.Conn{})
	clientC := hub.Register(2, &websocket.Conn{})

	assert.Equal(t, 2, hub.ConnectionCount(1))
	assert.Equal(t, 1, hub.ConnectionCount(2))

	hub.Unregister(clientA)
	assert.Equal(t, 1, hub.ConnectionCount(1))

	hub.Unregister(clientB)
	assert.Equal(t, 0, hub.ConnectionCount(1))

	// 重复移除不报错
	hub.Unregister(clientB)
	assert.Equal(t, 0, hub.ConnectionCount(1))

	hub.Unregister(clientC)
}

func TestHubPushWithoutConnections(t *testing.T) {
	hub := NewNotificationHub()

	// 没有在线连接时推送是空操作
	assert.NotPanics(t, func() {
		hub.Push(99, nil)
	})
}

// 多个请求goroutine同时向同一用户推送时，写入必须经由每连接唯一的
// 写goroutine串行执行——并发直写同一连接会使gorilla/websocket panic，
// 进而把已落库的业务操作变成500
func TestHubPushConcurrent(t *testing.T) {
	hub := NewNotificationHub()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := hub.Register(1, conn)
		defer func() {
			hub.Unregister(client)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// 客户端持续消费，避免服务端写缓冲堆积
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool {
		return hub.ConnectionCount(1) == 1
	}, time.Second, 10*time.Millisecond)

	notifikasi := &models.Notifikasi{
		UserID: 1,
		Judul:  "Aset baru",
		Pesan:  "Aset AST-001 ditambahkan",
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				hub.Push(1, notifikasi)
			}
		}()
	}
	wg.Wait()

	// 连接在并发推送后仍然存活
	assert.Equal(t, 1, hub.ConnectionCount(1))
}

func TestOrderClause(t *testing.T) {
	allowed := map[string]bool{"created_at": true, "username": true}

	assert.Equal(t, "username ASC", orderClause("username", "asc", allowed))
	assert.Equal(t, "created_at DESC", orderClause("created_at", "desc", allowed))

	// 白名单外的列回退到created_at，非法方向回退到DESC
	assert.Equal(t, "created_at DESC", orderClause("password; DROP TABLE users", "asc; --", allowed))
	assert.Equal(t, "created_at DESC", orderClause("", "", allowed))
}
