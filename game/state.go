package game

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrUnknownPlayer      = errors.New("game: unknown player")
	ErrPlayerDead         = errors.New("game: player is dead")
	ErrChestUnavailable   = errors.New("game: chest unavailable")
	ErrExpAwardOutOfRange = errors.New("game: exp award out of range")
	ErrUnknownCharacter   = errors.New("game: unknown character")
	ErrInsufficientEnergy = errors.New("game: insufficient energy")
	ErrStaticAlreadySet   = errors.New("game: static data already set")
	ErrGameOver           = errors.New("game: game is over")
	ErrUnknownInput       = errors.New("game: unknown input")
	ErrGameNotOver        = errors.New("game: game still running")
)

// ExperienceOrb 经验球：任一存活玩家触碰即被消耗
type ExperienceOrb struct {
	ID    string
	X, Y  float64
	Value float64
}

// Chest 宝箱：只能被领取一次
type Chest struct {
	ID   string
	X, Y float64
	Type string
}

// GameState 房间唯一的权威状态。不加锁：调用方负责把 HandleInput 与 Update 串行化
type GameState struct {
	Tuning Tuning

	Players        map[string]*Player
	Enemies        []*Enemy
	Projectiles    []*Projectile
	ExperienceOrbs []*ExperienceOrb
	Chests         []*Chest

	Wave          int
	WaveStartTime float64
	LastSpawnTime float64
	SpawnInterval float64
	GameTime      float64
	IsGameOver    bool
	IsVictory     bool

	// 一次性元数据（地图/障碍/装饰），仅首个客户端上传
	MapName     string
	Obstacles   json.RawMessage
	Decorations json.RawMessage

	mapSet         bool
	worldSizeSet   bool
	obstaclesSet   bool
	decorationsSet bool
	configSet      bool

	rng    *rand.Rand
	newID  func() string
	events []Event
}

// NewGameState 创建状态；seed 固定时模拟可复现
func NewGameState(t Tuning, seed int64) *GameState {
	g := &GameState{
		Tuning:  t,
		Players: make(map[string]*Player),
		rng:     rand.New(rand.NewSource(seed)),
		newID:   func() string { return uuid.NewString() },
	}
	g.resetRound()
	return g
}

func (g *GameState) resetRound() {
	g.Enemies = nil
	g.Projectiles = nil
	g.ExperienceOrbs = nil
	g.Chests = nil
	g.Wave = 1
	g.WaveStartTime = 0
	g.LastSpawnTime = 0
	g.SpawnInterval = g.Tuning.SpawnInterval
	g.GameTime = 0
	g.IsGameOver = false
	g.IsVictory = false
}

// AddPlayer 注册玩家；同 id 重复加入时保留原实体
func (g *GameState) AddPlayer(id string, opts JoinOptions) *Player {
	if p, ok := g.Players[id]; ok {
		return p
	}
	p := newPlayer(id, opts, g.Tuning)
	g.Players[id] = p
	return p
}

// RemovePlayer 断线即移除
func (g *GameState) RemovePlayer(id string) {
	delete(g.Players, id)
}

// Player 按 id 查询
func (g *GameState) Player(id string) (*Player, bool) {
	p, ok := g.Players[id]
	return p, ok
}

// StaticSet 是否已收到一次性静态数据
func (g *GameState) StaticSet() bool {
	return g.mapSet || g.worldSizeSet || g.obstaclesSet || g.decorationsSet
}

// SetTuning 热更新数值；已存在实体不回溯
func (g *GameState) SetTuning(t Tuning) {
	g.Tuning = t
	if g.SpawnInterval > t.SpawnInterval || g.SpawnInterval < t.MinSpawnInterval {
		g.SpawnInterval = t.SpawnInterval
	}
}

// SetIDGenerator 替换实体 id 生成器（测试用）
func (g *GameState) SetIDGenerator(f func() string) { g.newID = f }

// DrainEvents 取出本帧累积的事件
func (g *GameState) DrainEvents() []Event {
	ev := g.events
	g.events = nil
	return ev
}

func (g *GameState) emit(e Event) { g.events = append(g.events, e) }

// sortedPlayerIDs 保证遍历顺序确定
func (g *GameState) sortedPlayerIDs() []string {
	ids := make([]string, 0, len(g.Players))
	for id := range g.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (g *GameState) nearestLivingPlayer(x, y float64) (*Player, float64, bool) {
	var best *Player
	bestD := 0.0
	for _, id := range g.sortedPlayerIDs() {
		p := g.Players[id]
		if p.IsDead {
			continue
		}
		d := dist(x, y, p.X, p.Y)
		if best == nil || d < bestD {
			best, bestD = p, d
		}
	}
	return best, bestD, best != nil
}
