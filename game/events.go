package game

// EventKind 模拟过程中产生、需要通知客户端的事件
type EventKind string

const (
	EventOrbCollected   EventKind = "orb_collected"
	EventChestCollected EventKind = "chest_collected"
	EventEnemyKilled    EventKind = "enemy_killed"
	EventWaveStarted    EventKind = "wave_started"
	EventPlayerDied     EventKind = "player_died"
	EventGameOver       EventKind = "game_over"
)

// Event 按 Kind 使用对应字段
type Event struct {
	Kind     EventKind `json:"kind"`
	PlayerID string    `json:"uid,omitempty"`
	EntityID string    `json:"id,omitempty"`
	Value    float64   `json:"value,omitempty"`
	Wave     int       `json:"wave,omitempty"`
	Victory  bool      `json:"victory,omitempty"`
}
