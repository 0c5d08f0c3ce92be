package game

import (
	"encoding/json"
	"sort"
)

// PlayerState 为广播给客户端的轻量状态
type PlayerState struct {
	ID          string  `json:"id" msgpack:"id"`
	Nickname    string  `json:"nickname,omitempty" msgpack:"nickname,omitempty"`
	CharacterID string  `json:"characterId,omitempty" msgpack:"characterId,omitempty"`
	X           float64 `json:"x" msgpack:"x"`
	Y           float64 `json:"y" msgpack:"y"`
	VX          float64 `json:"vx" msgpack:"vx"`
	VY          float64 `json:"vy" msgpack:"vy"`
	Facing      float64 `json:"facing" msgpack:"facing"`
	Health      float64 `json:"health" msgpack:"health"`
	MaxHealth   float64 `json:"maxHealth" msgpack:"maxHealth"`
	Energy      float64 `json:"energy" msgpack:"energy"`
	MaxEnergy   float64 `json:"maxEnergy" msgpack:"maxEnergy"`
	Level       int     `json:"level" msgpack:"level"`
	Experience  float64 `json:"experience" msgpack:"experience"`
	Gold        int     `json:"gold" msgpack:"gold"`
	IsDead      bool    `json:"isDead" msgpack:"isDead"`
}

type EnemyState struct {
	ID           string  `json:"id" msgpack:"id"`
	X            float64 `json:"x" msgpack:"x"`
	Y            float64 `json:"y" msgpack:"y"`
	Health       float64 `json:"health" msgpack:"health"`
	MaxHealth    float64 `json:"maxHealth" msgpack:"maxHealth"`
	Size         float64 `json:"size" msgpack:"size"`
	HitFlashTime float64 `json:"hitFlashTime" msgpack:"hitFlashTime"`
	IsDying      bool    `json:"isDying" msgpack:"isDying"`
	DeathElapsed float64 `json:"deathElapsed,omitempty" msgpack:"deathElapsed,omitempty"`
}

type ProjectileState struct {
	ID      string  `json:"id" msgpack:"id"`
	OwnerID string  `json:"ownerId" msgpack:"ownerId"`
	Weapon  string  `json:"weapon,omitempty" msgpack:"weapon,omitempty"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Angle   float64 `json:"angle" msgpack:"angle"`
	Size    float64 `json:"size" msgpack:"size"`
	Homing  bool    `json:"homing,omitempty" msgpack:"homing,omitempty"`
}

type OrbState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Value float64 `json:"value" msgpack:"value"`
}

type ChestState struct {
	ID   string  `json:"id" msgpack:"id"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	Type string  `json:"type" msgpack:"type"`
}

// Snapshot 广播用的完整状态。Obstacles/Decorations 仅在需要时附带
type Snapshot struct {
	Players        []PlayerState     `json:"players" msgpack:"players"`
	Enemies        []EnemyState      `json:"enemies" msgpack:"enemies"`
	Projectiles    []ProjectileState `json:"projectiles" msgpack:"projectiles"`
	ExperienceOrbs []OrbState        `json:"experienceOrbs" msgpack:"experienceOrbs"`
	Chests         []ChestState      `json:"chests" msgpack:"chests"`
	Wave           int               `json:"wave" msgpack:"wave"`
	IsGameOver     bool              `json:"isGameOver" msgpack:"isGameOver"`
	IsVictory      bool              `json:"isVictory" msgpack:"isVictory"`
	GameTime       float64           `json:"gameTime" msgpack:"gameTime"`
	WorldWidth     float64           `json:"worldWidth" msgpack:"worldWidth"`
	WorldHeight    float64           `json:"worldHeight" msgpack:"worldHeight"`
	MapName        string            `json:"map,omitempty" msgpack:"map,omitempty"`
	Obstacles      json.RawMessage   `json:"obstacles,omitempty" msgpack:"obstacles,omitempty"`
	Decorations    json.RawMessage   `json:"decorations,omitempty" msgpack:"decorations,omitempty"`
}

// Snapshot 生成只读副本；includeStatic 为 false 时剥离一次性数据
func (g *GameState) Snapshot(includeStatic bool) Snapshot {
	s := Snapshot{
		Players:        make([]PlayerState, 0, len(g.Players)),
		Enemies:        make([]EnemyState, 0, len(g.Enemies)),
		Projectiles:    make([]ProjectileState, 0, len(g.Projectiles)),
		ExperienceOrbs: make([]OrbState, 0, len(g.ExperienceOrbs)),
		Chests:         make([]ChestState, 0, len(g.Chests)),
		Wave:           g.Wave,
		IsGameOver:     g.IsGameOver,
		IsVictory:      g.IsVictory,
		GameTime:       g.GameTime,
		WorldWidth:     g.Tuning.WorldWidth,
		WorldHeight:    g.Tuning.WorldHeight,
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, PlayerState{
			ID: p.ID, Nickname: p.Nickname, CharacterID: p.CharacterID,
			X: p.X, Y: p.Y, VX: p.VX, VY: p.VY, Facing: p.Facing,
			Health: p.Health, MaxHealth: p.MaxHealth,
			Energy: p.Energy, MaxEnergy: p.MaxEnergy,
			Level: p.Level, Experience: p.Experience, Gold: p.Gold, IsDead: p.IsDead,
		})
	}
	sort.Slice(s.Players, func(i, j int) bool { return s.Players[i].ID < s.Players[j].ID })
	for _, e := range g.Enemies {
		s.Enemies = append(s.Enemies, EnemyState{
			ID: e.ID, X: e.X, Y: e.Y, Health: e.Health, MaxHealth: e.MaxHealth,
			Size: e.Size, HitFlashTime: e.HitFlashTime, IsDying: e.IsDying, DeathElapsed: e.DeathElapsed,
		})
	}
	for _, p := range g.Projectiles {
		s.Projectiles = append(s.Projectiles, ProjectileState{
			ID: p.ID, OwnerID: p.OwnerID, Weapon: p.Weapon,
			X: p.X, Y: p.Y, Angle: p.Angle, Size: p.Size, Homing: p.Homing,
		})
	}
	for _, o := range g.ExperienceOrbs {
		s.ExperienceOrbs = append(s.ExperienceOrbs, OrbState{ID: o.ID, X: o.X, Y: o.Y, Value: o.Value})
	}
	for _, c := range g.Chests {
		s.Chests = append(s.Chests, ChestState{ID: c.ID, X: c.X, Y: c.Y, Type: c.Type})
	}
	if includeStatic {
		s.MapName = g.MapName
		s.Obstacles = g.Obstacles
		s.Decorations = g.Decorations
	}
	return s
}
