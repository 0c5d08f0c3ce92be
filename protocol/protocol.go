package protocol

import (
	"encoding/json"

	"hordearena/game"
)

// 客户端 → 服务端
const (
	MsgJoin     = "join"
	MsgGameData = "game-data"
)

// 服务端 → 客户端
const (
	MsgJoined         = "joined"
	MsgGameState      = "game-state"
	MsgUserJoined     = "user-joined"
	MsgUserLeft       = "user-left"
	MsgChestCollected = "chest_collected"
	MsgOrbCollected   = "orb_collected"
	MsgWaveStarted    = "wave_started"
	MsgPlayerDied     = "player_died"
	MsgGameOver       = "game_over"
)

// game-data 中不进入权威状态、原样转发的类型
const DataVFX = "vfx"

// ClientMessage 入站消息；join 与 game-data 共用一个结构
type ClientMessage struct {
	Type        string          `json:"type"`
	RoomID      string          `json:"roomId"`
	UID         string          `json:"uid"`
	CharacterID string          `json:"characterId,omitempty"`
	Nickname    string          `json:"nickname,omitempty"`
	MaxHealth   float64         `json:"maxHealth,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// DataHeader 用于先读出 game-data.data.type 再按类型解码
type DataHeader struct {
	Type string `json:"type"`
}

type Joined struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId"`
	UID         string `json:"uid"`
	NeedsStatic bool   `json:"needsStatic"`
}

type GameState struct {
	Type      string        `json:"type" msgpack:"type"`
	State     game.Snapshot `json:"state" msgpack:"state"`
	Timestamp int64         `json:"timestamp" msgpack:"timestamp"`
}

type Presence struct {
	Type     string `json:"type"`
	UID      string `json:"uid"`
	Nickname string `json:"nickname,omitempty"`
}

type ChestCollected struct {
	Type         string `json:"type"`
	ChestID      string `json:"chestId"`
	CollectorUID string `json:"collectorUid"`
}

type OrbCollected struct {
	Type         string  `json:"type"`
	OrbID        string  `json:"orbId"`
	CollectorUID string  `json:"collectorUid"`
	Value        float64 `json:"value"`
}

// GameEvent 其余事件（波次、死亡、结束）的通用外形
type GameEvent struct {
	Type    string `json:"type"`
	UID     string `json:"uid,omitempty"`
	Wave    int    `json:"wave,omitempty"`
	Victory bool   `json:"victory,omitempty"`
}

// Relay 转发给房间其他成员的 game-data（vfx）
type Relay struct {
	Type string          `json:"type"`
	UID  string          `json:"uid"`
	Data json.RawMessage `json:"data"`
}
