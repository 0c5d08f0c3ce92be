package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"hordearena/game"
	"hordearena/protocol"
)

func TestJoinRepliesJoinedThenFullState(t *testing.T) {
	reg := newTestRegistry()
	c := &fakeConn{}
	mustJoin(t, reg, "r1", "u1", c)

	frames := c.take()
	if got := frameTypes(t, frames); !equalStrings(got, []string{protocol.MsgJoined, protocol.MsgGameState}) {
		t.Fatalf("frames = %v", got)
	}
	var joined protocol.Joined
	if err := json.Unmarshal(frames[0].Data, &joined); err != nil {
		t.Fatal(err)
	}
	if joined.RoomID != "r1" || joined.UID != "u1" || !joined.NeedsStatic {
		t.Fatalf("joined = %+v", joined)
	}
	gs := decodeState(t, frames[1])
	if len(gs.State.Players) != 1 || gs.State.Players[0].ID != "u1" {
		t.Fatalf("state players = %+v", gs.State.Players)
	}
}

func TestJoinNotifiesExistingMembers(t *testing.T) {
	reg := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	mustJoin(t, reg, "r1", "a", a)
	a.take()
	mustJoin(t, reg, "r1", "b", b)

	got := frameTypes(t, a.take())
	if !equalStrings(got, []string{protocol.MsgUserJoined}) {
		t.Fatalf("existing member frames = %v", got)
	}
	if n := len(framesOf(t, b.take(), protocol.MsgUserJoined)); n != 0 {
		t.Fatalf("joiner got %d user-joined for itself", n)
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	reg := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	r1 := mustJoin(t, reg, "r1", "a", a)
	mustJoin(t, reg, "r2", "b", b)
	a.take()

	if _, err := r1.HandleInput("b", game.Move{DX: 1, DeltaTime: 0.05}); !errors.Is(err, game.ErrUnknownPlayer) {
		t.Fatalf("cross-room input err = %v", err)
	}
	if len(a.take()) != 0 {
		t.Fatal("r1 member received traffic from r2")
	}
}

func TestLeaveDestroysEmptyRoom(t *testing.T) {
	reg := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	mustJoin(t, reg, "r1", "a", a)
	mustJoin(t, reg, "r1", "b", b)
	a.take()

	reg.Leave("r1", "b", b)
	if got := frameTypes(t, a.take()); !equalStrings(got, []string{protocol.MsgUserLeft}) {
		t.Fatalf("frames after leave = %v", got)
	}
	if _, ok := reg.Get("r1"); !ok {
		t.Fatal("room destroyed while a member remains")
	}

	reg.Leave("r1", "a", a)
	if _, ok := reg.Get("r1"); ok {
		t.Fatal("empty room still registered")
	}

	// 同名房间重新创建时是全新的状态
	r := mustJoin(t, reg, "r1", "c", &fakeConn{})
	r.withState(func(g *game.GameState) {
		if len(g.Players) != 1 || g.Wave != 1 {
			t.Fatalf("recreated room carries old state: players=%d wave=%d", len(g.Players), g.Wave)
		}
	})
}

func TestReconnectReplacesConnection(t *testing.T) {
	reg := newTestRegistry()
	old, fresh := &fakeConn{}, &fakeConn{}
	r := mustJoin(t, reg, "r1", "u1", old)
	mustJoin(t, reg, "r1", "u1", fresh)

	if !old.isClosed() {
		t.Fatal("replaced connection not closed")
	}
	// 旧连接的断线回调不应移除新连接
	reg.Leave("r1", "u1", old)
	if _, ok := reg.Get("r1"); !ok {
		t.Fatal("stale leave destroyed the room")
	}
	if r.PlayerCount() != 1 {
		t.Fatalf("player count = %d", r.PlayerCount())
	}
}

func TestChestClaimIsExclusive(t *testing.T) {
	reg := newTestRegistry()
	const n = 8
	conns := make([]*fakeConn, n)
	var r *Room
	for i := range conns {
		conns[i] = &fakeConn{}
		r = mustJoin(t, reg, "r1", fmt.Sprintf("p%d", i), conns[i])
	}
	r.withState(func(g *game.GameState) {
		g.Chests = append(g.Chests, &game.Chest{ID: "c1", X: 100, Y: 100, Type: "common"})
	})
	for _, c := range conns {
		c.take()
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.HandleInput(fmt.Sprintf("p%d", i), game.TryCollectChest{ChestID: "c1"})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case !errors.Is(err, game.ErrChestUnavailable):
			t.Fatalf("unexpected err %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want 1", winners)
	}
	for i, c := range conns {
		got := framesOf(t, c.take(), protocol.MsgChestCollected)
		if len(got) != 1 {
			t.Fatalf("conn %d got %d chest_collected", i, len(got))
		}
	}
	if m := r.Metrics(); m.InputsAccepted != 1 || m.InputsRejected != n-1 {
		t.Fatalf("metrics accepted=%d rejected=%d", m.InputsAccepted, m.InputsRejected)
	}
}

func TestStaticDataBroadcastOnce(t *testing.T) {
	reg := newTestRegistry()
	c := &fakeConn{}
	r := mustJoin(t, reg, "r1", "u1", c)
	if _, err := r.HandleInput("u1", game.MapInfo{Name: "crypt"}); err != nil {
		t.Fatal(err)
	}
	c.take()

	r.Broadcast()
	r.Broadcast()
	frames := framesOf(t, c.take(), protocol.MsgGameState)
	if len(frames) != 2 {
		t.Fatalf("broadcasts = %d", len(frames))
	}
	if first := decodeState(t, frames[0]); first.State.MapName != "crypt" {
		t.Fatalf("first broadcast map = %q", first.State.MapName)
	}
	if second := decodeState(t, frames[1]); second.State.MapName != "" {
		t.Fatalf("second broadcast repeats static data: %q", second.State.MapName)
	}

	// 后加入者在 join 快照里拿到静态数据，且不再被要求上传
	late := &fakeConn{}
	mustJoin(t, reg, "r1", "u2", late)
	frames = late.take()
	var joined protocol.Joined
	if err := json.Unmarshal(frames[0].Data, &joined); err != nil {
		t.Fatal(err)
	}
	if joined.NeedsStatic {
		t.Fatal("late joiner asked for static data")
	}
	if gs := decodeState(t, frames[1]); gs.State.MapName != "crypt" {
		t.Fatalf("join snapshot map = %q", gs.State.MapName)
	}
}

func TestRelayExcludesSender(t *testing.T) {
	reg := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	r := mustJoin(t, reg, "r1", "a", a)
	mustJoin(t, reg, "r1", "b", b)
	a.take()
	b.take()

	r.Relay("a", json.RawMessage(`{"type":"vfx","kind":"spark"}`))
	if n := len(a.take()); n != 0 {
		t.Fatalf("sender received %d relayed frames", n)
	}
	frames := b.take()
	if len(frames) != 1 {
		t.Fatalf("peer frames = %d", len(frames))
	}
	var relay protocol.Relay
	if err := json.Unmarshal(frames[0].Data, &relay); err != nil {
		t.Fatal(err)
	}
	if relay.UID != "a" || string(relay.Data) != `{"type":"vfx","kind":"spark"}` {
		t.Fatalf("relay = %+v", relay)
	}
}

func TestMsgpackBroadcastIsBinary(t *testing.T) {
	reg := NewRegistry(RoomOptions{Tuning: quietTuning(), Codec: protocol.CodecMsgpack, Seed: 1})
	c := &fakeConn{}
	r := mustJoin(t, reg, "r1", "u1", c)
	c.take()

	r.Broadcast()
	frames := c.take()
	if len(frames) != 1 || !frames[0].Binary {
		t.Fatalf("frames = %+v", frames)
	}
	if gs := decodeState(t, frames[0]); gs.Type != protocol.MsgGameState || len(gs.State.Players) != 1 {
		t.Fatalf("decoded = %+v", gs)
	}
}

func TestEventsReachAllMembers(t *testing.T) {
	reg := newTestRegistry()
	a, b := &fakeConn{}, &fakeConn{}
	r := mustJoin(t, reg, "r1", "a", a)
	mustJoin(t, reg, "r1", "b", b)
	r.withState(func(g *game.GameState) {
		for _, p := range g.Players {
			p.Health = 1
		}
		g.Enemies = append(g.Enemies, &game.Enemy{
			ID: "e1", X: 1000, Y: 1000, Health: 10, MaxHealth: 10,
			Size: 28, Damage: 50, AttackCooldown: 1, LastAttackAt: -1,
		})
	})
	a.take()
	b.take()

	r.Step(1.0 / 60)
	for name, c := range map[string]*fakeConn{"a": a, "b": b} {
		frames := c.take()
		if n := len(framesOf(t, frames, protocol.MsgPlayerDied)); n != 1 {
			t.Fatalf("%s: player_died frames = %d", name, n)
		}
	}
}

func TestClosedRoomRejectsInput(t *testing.T) {
	reg := newTestRegistry()
	c := &fakeConn{}
	r := mustJoin(t, reg, "r1", "u1", c)
	reg.CloseAll()

	if !c.isClosed() {
		t.Fatal("member conn not closed")
	}
	if _, err := r.HandleInput("u1", game.Move{}); !errors.Is(err, ErrRoomClosed) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := reg.Get("r1"); ok {
		t.Fatal("room still registered")
	}
}
