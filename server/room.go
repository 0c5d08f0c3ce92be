package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/sasha-s/go-deadlock"

	"hordearena/game"
	"hordearena/protocol"
)

var ErrRoomClosed = errors.New("room closed")

// Room 房间：连接集合 + 唯一的权威 GameState。
// 输入处理与 Tick 推进都在 mu 下执行，二者严格串行。
type Room struct {
	ID      string
	metrics *RoomMetrics

	mu         deadlock.Mutex
	state      *game.GameState
	members    map[string]*member
	codec      protocol.Codec
	staticSent bool // 一次性静态数据是否已随广播下发
	closed     bool
	now        func() time.Time
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(id string, tuning game.Tuning, codec protocol.Codec, seed int64) *Room {
	return &Room{
		ID:      id,
		metrics: &RoomMetrics{},
		state:   game.NewGameState(tuning, seed),
		members: make(map[string]*member),
		codec:   codec,
		now:     time.Now,
	}
}

// Metrics 房间指标
func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// PlayerCount 当前连接数
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// join 注册连接与玩家，回复 joined + 完整快照，并通知其他成员
func (r *Room) join(uid string, conn Conn, opts game.JoinOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if old, ok := r.members[uid]; ok && old.conn != conn {
		// 同 uid 重连：顶掉旧连接
		old.conn.Close()
	}
	r.members[uid] = &member{uid: uid, nickname: opts.Nickname, conn: conn}
	r.state.AddPlayer(uid, opts)

	r.sendTo(conn, protocol.Joined{
		Type:        protocol.MsgJoined,
		RoomID:      r.ID,
		UID:         uid,
		NeedsStatic: !r.state.StaticSet(),
	})
	if b, err := r.encodeState(true); err == nil {
		conn.Enqueue(Outbound{Binary: r.codec.Binary(), Data: b})
	}
	r.sendOthers(uid, protocol.Presence{Type: protocol.MsgUserJoined, UID: uid, Nickname: opts.Nickname})
	return nil
}

// leave 移除连接；conn 与当前登记的不一致时视为过期请求。返回剩余连接数
func (r *Room) leave(uid string, conn Conn) (remaining int, removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[uid]
	if !ok || (conn != nil && m.conn != conn) {
		return len(r.members), false
	}
	delete(r.members, uid)
	r.state.RemovePlayer(uid)
	if len(r.members) > 0 {
		r.sendOthers(uid, protocol.Presence{Type: protocol.MsgUserLeft, UID: uid, Nickname: m.nickname})
	}
	return len(r.members), true
}

// close 销毁房间并关闭剩余连接
func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, m := range r.members {
		m.conn.Close()
	}
	r.members = map[string]*member{}
}

// HandleInput 在房间串行点内处理一条输入，随后下发其产生的事件
func (r *Room) HandleInput(uid string, in game.Input) (game.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return game.Result{}, ErrRoomClosed
	}
	res, err := r.state.HandleInput(uid, in)
	if err != nil {
		r.metrics.IncRejected()
	} else {
		r.metrics.IncAccepted()
	}
	r.flushEvents()
	return res, err
}

// Relay 原样转发 vfx 给其他成员，不进入权威状态
func (r *Room) Relay(uid string, data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[uid]; !ok {
		return
	}
	r.sendOthers(uid, protocol.Relay{Type: protocol.MsgGameData, UID: uid, Data: data})
}

// Step 推进一帧
func (r *Room) Step(dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.state.Update(dt)
	r.flushEvents()
}

// Broadcast 将当前世界状态广播给所有成员；静态数据只随首次广播下发
func (r *Room) Broadcast() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.members) == 0 {
		return
	}
	withStatic := !r.staticSent && r.state.StaticSet()
	b, err := r.encodeState(withStatic)
	if err != nil {
		Log.Errorw("encode state", "room", r.ID, "err", err)
		return
	}
	if withStatic {
		r.staticSent = true
	}
	msg := Outbound{Binary: r.codec.Binary(), Data: b}
	for _, m := range r.members {
		m.conn.Enqueue(msg)
	}
	r.metrics.IncBroadcast()
}

// Tuning 当前数值配置
func (r *Room) Tuning() game.Tuning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Tuning
}

// SetTuning 热更新数值
func (r *Room) SetTuning(t game.Tuning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetTuning(t)
}

// withState 在串行点内访问状态（测试与管理接口用）
func (r *Room) withState(fn func(g *game.GameState)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.state)
}

func (r *Room) encodeState(withStatic bool) ([]byte, error) {
	return protocol.EncodeState(r.codec, protocol.GameState{
		Type:      protocol.MsgGameState,
		State:     r.state.Snapshot(withStatic),
		Timestamp: r.now().UnixMilli(),
	})
}

// flushEvents 将模拟事件转换为消息发给全体成员（含触发者）
func (r *Room) flushEvents() {
	for _, ev := range r.state.DrainEvents() {
		var msg any
		switch ev.Kind {
		case game.EventChestCollected:
			msg = protocol.ChestCollected{Type: protocol.MsgChestCollected, ChestID: ev.EntityID, CollectorUID: ev.PlayerID}
		case game.EventOrbCollected:
			msg = protocol.OrbCollected{Type: protocol.MsgOrbCollected, OrbID: ev.EntityID, CollectorUID: ev.PlayerID, Value: ev.Value}
		case game.EventWaveStarted:
			msg = protocol.GameEvent{Type: protocol.MsgWaveStarted, Wave: ev.Wave}
		case game.EventPlayerDied:
			msg = protocol.GameEvent{Type: protocol.MsgPlayerDied, UID: ev.PlayerID}
		case game.EventGameOver:
			msg = protocol.GameEvent{Type: protocol.MsgGameOver, Victory: ev.Victory}
		default:
			// enemy_killed 仅体现在快照中
			continue
		}
		r.sendOthers("", msg)
	}
}

func (r *Room) sendTo(conn Conn, v any) {
	b, err := protocol.Encode(v)
	if err != nil {
		Log.Errorw("encode message", "room", r.ID, "err", err)
		return
	}
	conn.Enqueue(Outbound{Data: b})
}

// sendOthers 发给除 except 外的所有成员；except 为空则发给全体
func (r *Room) sendOthers(except string, v any) {
	b, err := protocol.Encode(v)
	if err != nil {
		Log.Errorw("encode message", "room", r.ID, "err", err)
		return
	}
	for uid, m := range r.members {
		if uid == except {
			continue
		}
		m.conn.Enqueue(Outbound{Data: b})
	}
}
