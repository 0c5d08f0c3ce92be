package server

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"hordearena/game"
	"hordearena/protocol"
)

// fakeConn 记录房间发出的所有帧
type fakeConn struct {
	mu     sync.Mutex
	frames []Outbound
	closed bool
}

func (f *fakeConn) Enqueue(msg Outbound) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, msg)
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// take 取出并清空已记录的帧
func (f *fakeConn) take() []Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.frames
	f.frames = nil
	return out
}

// frameType 读出帧的 type 字段（JSON 或 msgpack）
func frameType(t *testing.T, o Outbound) string {
	t.Helper()
	var h struct {
		Type string `json:"type" msgpack:"type"`
	}
	var err error
	if o.Binary {
		err = msgpack.Unmarshal(o.Data, &h)
	} else {
		err = json.Unmarshal(o.Data, &h)
	}
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return h.Type
}

func frameTypes(t *testing.T, frames []Outbound) []string {
	t.Helper()
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = frameType(t, f)
	}
	return out
}

// framesOf 按类型过滤
func framesOf(t *testing.T, frames []Outbound, typ string) []Outbound {
	t.Helper()
	var out []Outbound
	for _, f := range frames {
		if frameType(t, f) == typ {
			out = append(out, f)
		}
	}
	return out
}

func decodeState(t *testing.T, o Outbound) protocol.GameState {
	t.Helper()
	var gs protocol.GameState
	var err error
	if o.Binary {
		err = msgpack.Unmarshal(o.Data, &gs)
	} else {
		err = json.Unmarshal(o.Data, &gs)
	}
	if err != nil {
		t.Fatalf("decode game-state: %v", err)
	}
	return gs
}

// quietTuning 关闭刷怪与波次推进
func quietTuning() game.Tuning {
	t := game.DefaultTuning()
	t.BaseSpawnCount = 0
	t.SpawnCountPerWave = 0
	t.WaveDuration = 0
	return t
}

func newTestRegistry() *Registry {
	return NewRegistry(RoomOptions{Tuning: quietTuning(), Codec: protocol.CodecJSON, Seed: 1})
}

func mustJoin(t *testing.T, reg *Registry, roomID, uid string, c Conn) *Room {
	t.Helper()
	r, err := reg.Join(roomID, uid, c, game.JoinOptions{Nickname: uid})
	if err != nil {
		t.Fatalf("join %s/%s: %v", roomID, uid, err)
	}
	return r
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
