package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// ClientConn 负责发送（写）数据到客户端的轻量包装，同时记录该连接所属的房间
type ClientConn struct {
	ws      *websocket.Conn
	limiter *RateLimiter
	metrics atomic.Pointer[RoomMetrics]

	mu     sync.Mutex
	send   chan Outbound
	closed bool

	// 仅由读协程访问
	roomID string
	uid    string
}

func NewClientConn(ws *websocket.Conn, queue int, limiter *RateLimiter, m *RoomMetrics) *ClientConn {
	c := &ClientConn{
		ws:      ws,
		limiter: limiter,
		send:    make(chan Outbound, queue),
	}
	c.metrics.Store(m)
	return c
}

// Enqueue 将要发送的消息压入队列（非阻塞）；队列满时丢弃最旧的一条，防止慢连接拖住 Tick
func (c *ClientConn) Enqueue(msg Outbound) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for {
		select {
		case c.send <- msg:
			return
		default:
		}
		select {
		case <-c.send:
			c.metrics.Load().IncQueueDropped()
		default:
		}
	}
}

// Close 关闭发送队列；写协程发完剩余消息后关闭底层连接
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			kind := websocket.TextMessage
			if msg.Binary {
				kind = websocket.BinaryMessage
			}
			if err := c.ws.WriteMessage(kind, msg.Data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，经限流后交给 Handler 分发；退出即视为断线
func (c *ClientConn) readPump(h *Handler) {
	defer func() {
		h.disconnect(c)
		c.Close()
		_ = c.ws.Close()
	}()
	c.ws.SetReadLimit(1 << 16)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				Log.Debugw("read error", "room", c.roomID, "uid", c.uid, "err", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		if !c.limiter.Allow() {
			c.metrics.Load().IncRateLimited()
			continue
		}
		h.dispatch(c, payload)
	}
}

// HandleWS WebSocket 接入；房间与身份由首条 join 消息决定
func (h *Handler) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "remote", r.RemoteAddr, "err", err)
		return
	}
	h.serve(NewClientConn(ws, h.cfg.SendQueue, NewRateLimiter(h.cfg.RateWindow, h.cfg.RateMax), h.lobby))
}
