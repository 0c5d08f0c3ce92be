package server

import (
	"sort"
	"time"

	"github.com/sasha-s/go-deadlock"

	"hordearena/game"
	"hordearena/protocol"
)

// RoomOptions 新房间的初始参数
type RoomOptions struct {
	Tuning game.Tuning
	Codec  protocol.Codec
	Seed   int64 // 0 表示按时间取种子
}

// Registry 按房间 id 管理房间生命周期：首次加入时创建，连接清空时销毁
type Registry struct {
	mu    deadlock.RWMutex
	rooms map[string]*Room
	opts  RoomOptions
	seq   int64
}

func NewRegistry(opts RoomOptions) *Registry {
	return &Registry{rooms: make(map[string]*Room), opts: opts}
}

// Join 获取或创建房间，并在房间内登记该连接
func (m *Registry) Join(roomID, uid string, conn Conn, opts game.JoinOptions) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		m.seq++
		seed := m.opts.Seed + m.seq
		if m.opts.Seed == 0 {
			seed = time.Now().UnixNano()
		}
		r = NewRoom(roomID, m.opts.Tuning, m.opts.Codec, seed)
		m.rooms[roomID] = r
		Log.Infow("room created", "room", roomID)
	}
	if err := r.join(uid, conn, opts); err != nil {
		return nil, err
	}
	Log.Infow("player joined", "room", roomID, "uid", uid)
	return r, nil
}

// Leave 移除连接；房间为空时连同其 GameState 一起销毁
func (m *Registry) Leave(roomID, uid string, conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return
	}
	remaining, removed := r.leave(uid, conn)
	if removed {
		Log.Infow("player left", "room", roomID, "uid", uid, "remaining", remaining)
	}
	if remaining == 0 {
		r.close()
		delete(m.rooms, roomID)
		Log.Infow("room destroyed", "room", roomID)
	}
}

// Get 查询房间
func (m *Registry) Get(roomID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

// Rooms 按 id 排序的房间列表快照
func (m *Registry) Rooms() []*Room {
	m.mu.RLock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CloseAll 关闭所有房间（进程退出时）
func (m *Registry) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.close()
		delete(m.rooms, id)
	}
}
