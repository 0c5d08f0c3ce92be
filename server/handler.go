package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hordearena/game"
	"hordearena/protocol"
)

const maxIDLen = 64

// Handler 连接生命周期：join/game-data 分发与断线清理。房间注册表显式注入
type Handler struct {
	registry *Registry
	cfg      Config
	lobby    *RoomMetrics // 尚未加入房间的连接计入这里
	upgrader websocket.Upgrader

	// 存活连接与写协程，退出时等待发送队列写完
	connMu  sync.Mutex
	conns   map[*ClientConn]struct{}
	writers sync.WaitGroup
}

func NewHandler(reg *Registry, cfg Config) *Handler {
	return &Handler{
		registry: reg,
		cfg:      cfg,
		lobby:    &RoomMetrics{},
		conns:    make(map[*ClientConn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 来源校验交给前置网关
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// dispatch 解析并分发一帧；无法解析的帧记录后丢弃
func (h *Handler) dispatch(c *ClientConn, payload []byte) {
	msg, err := protocol.DecodeClient(payload)
	if err != nil {
		c.metrics.Load().IncMalformed()
		Log.Warnw("malformed frame dropped", "room", c.roomID, "uid", c.uid, "err", err)
		return
	}
	switch msg.Type {
	case protocol.MsgJoin:
		h.join(c, msg)
	case protocol.MsgGameData:
		h.gameData(c, msg)
	default:
		c.metrics.Load().IncMalformed()
		Log.Debugw("unknown message type", "type", msg.Type, "uid", c.uid)
	}
}

func (h *Handler) join(c *ClientConn, msg protocol.ClientMessage) {
	if !validID(msg.RoomID) || (msg.UID != "" && !validID(msg.UID)) {
		c.metrics.Load().IncMalformed()
		Log.Warnw("join with invalid identifiers", "room", msg.RoomID, "uid", msg.UID)
		return
	}
	uid := msg.UID
	if uid == "" {
		uid = uuid.NewString()
	}
	// 一个连接只属于一个房间：换房前先离开旧房间
	if c.roomID != "" {
		if c.roomID == msg.RoomID && c.uid == uid {
			return
		}
		h.disconnect(c)
	}
	room, err := h.registry.Join(msg.RoomID, uid, c, game.JoinOptions{
		Nickname:    msg.Nickname,
		CharacterID: msg.CharacterID,
		MaxHealth:   msg.MaxHealth,
	})
	if err != nil {
		Log.Warnw("join failed", "room", msg.RoomID, "uid", uid, "err", err)
		return
	}
	c.roomID, c.uid = msg.RoomID, uid
	c.metrics.Store(room.Metrics())
}

func (h *Handler) gameData(c *ClientConn, msg protocol.ClientMessage) {
	if c.roomID == "" {
		Log.Debugw("game-data before join dropped")
		return
	}
	// 身份以连接绑定为准，消息里的 roomId/uid 只做一致性校验
	if (msg.RoomID != "" && msg.RoomID != c.roomID) || (msg.UID != "" && msg.UID != c.uid) {
		Log.Warnw("game-data identity mismatch", "room", c.roomID, "uid", c.uid, "claimedRoom", msg.RoomID, "claimedUid", msg.UID)
		return
	}
	room, ok := h.registry.Get(c.roomID)
	if !ok {
		return
	}
	typ, err := protocol.DataType(msg.Data)
	if err != nil {
		room.metrics.IncMalformed()
		Log.Warnw("malformed game-data", "room", c.roomID, "uid", c.uid, "err", err)
		return
	}
	if typ == protocol.DataVFX {
		room.Relay(c.uid, msg.Data)
		return
	}
	in, err := decodeInput(typ, msg.Data)
	if err != nil {
		room.metrics.IncMalformed()
		Log.Warnw("malformed input", "room", c.roomID, "uid", c.uid, "type", typ, "err", err)
		return
	}
	if _, err := room.HandleInput(c.uid, in); err != nil {
		// 无效引用（宝箱已被领取、玩家已死亡等）静默失败
		level := Log.Debugw
		if errors.Is(err, game.ErrUnknownInput) {
			level = Log.Warnw
		}
		level("input rejected", "room", c.roomID, "uid", c.uid, "type", typ, "err", err)
	}
}

// disconnect 同步移除玩家；房间为空时由注册表销毁
func (h *Handler) disconnect(c *ClientConn) {
	if c.roomID == "" {
		return
	}
	h.registry.Leave(c.roomID, c.uid, c)
	c.roomID, c.uid = "", ""
	c.metrics.Store(h.lobby)
}

func validID(s string) bool {
	if s == "" || len(s) > maxIDLen {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// serve 登记连接并启动读写协程
func (h *Handler) serve(c *ClientConn) {
	h.connMu.Lock()
	h.conns[c] = struct{}{}
	h.connMu.Unlock()

	h.writers.Add(1)
	go func() {
		defer func() {
			h.connMu.Lock()
			delete(h.conns, c)
			h.connMu.Unlock()
			h.writers.Done()
		}()
		c.writePump()
	}()
	go c.readPump(h)
}

// Shutdown 关闭所有连接的发送队列，等待写协程把剩余消息与 close 帧写出；
// ctx 到期则放弃等待
func (h *Handler) Shutdown(ctx context.Context) error {
	h.connMu.Lock()
	for c := range h.conns {
		c.Close()
	}
	h.connMu.Unlock()

	done := make(chan struct{})
	go func() {
		h.writers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
