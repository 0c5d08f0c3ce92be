package game

import (
	"encoding/json"
	"fmt"
	"math"
)

// Input 客户端意图。服务端只接收意图，不接收结果（位置、命中等一律服务端计算）
type Input interface {
	Kind() string
}

// Move 方向意图 + 客户端帧间隔；绝对坐标不被信任
type Move struct {
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	DeltaTime float64 `json:"deltaTime"`
}

// Attack 发射投射物。数值按 Tuning 上限裁剪；homing 目标每帧由服务端重新校验
type Attack struct {
	Angle          float64 `json:"angle"`
	Weapon         string  `json:"weapon,omitempty"`
	Damage         float64 `json:"damage"`
	Speed          float64 `json:"speed"`
	Size           float64 `json:"size,omitempty"`
	MaxDistance    float64 `json:"maxDistance,omitempty"`
	Homing         bool    `json:"homing,omitempty"`
	TurnRatePerSec float64 `json:"turnRatePerSec,omitempty"`
	TargetID       string  `json:"assignedTargetId,omitempty"`
}

type UseUltimate struct{}

// Config 房间规则覆盖，仅首次生效
type Config struct {
	FinalWave     *int     `json:"finalWave,omitempty"`
	WaveDuration  *float64 `json:"waveDuration,omitempty"`
	SpawnInterval *float64 `json:"spawnInterval,omitempty"`
	MaxEnemies    *int     `json:"maxEnemies,omitempty"`
}

type MapInfo struct {
	Name string `json:"name"`
}

type WorldSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Obstacles struct {
	Data json.RawMessage `json:"data"`
}

type Decorations struct {
	Data json.RawMessage `json:"data"`
}

type NewSession struct{}

type TryCollectChest struct {
	ChestID string `json:"chestId"`
}

type AwardExp struct {
	Amount float64 `json:"amount"`
}

func (Move) Kind() string            { return "move" }
func (Attack) Kind() string          { return "attack" }
func (UseUltimate) Kind() string     { return "use_ultimate" }
func (Config) Kind() string          { return "config" }
func (MapInfo) Kind() string         { return "map" }
func (WorldSize) Kind() string       { return "world-size" }
func (Obstacles) Kind() string       { return "obstacles" }
func (Decorations) Kind() string     { return "decorations" }
func (NewSession) Kind() string      { return "new-session" }
func (TryCollectChest) Kind() string { return "try_collect_chest" }
func (AwardExp) Kind() string        { return "award_exp" }

// Result 输入处理的附带结果
type Result struct {
	ChestID     string // 成功领取的宝箱
	ProjectileN int    // 本次生成的投射物数量
	LevelUps    int
}

// HandleInput 同步处理一条输入；必须与 Update 串行执行
func (g *GameState) HandleInput(playerID string, in Input) (Result, error) {
	p, ok := g.Players[playerID]
	if !ok {
		return Result{}, fmt.Errorf("%s from %q: %w", in.Kind(), playerID, ErrUnknownPlayer)
	}
	switch v := in.(type) {
	case Move:
		return Result{}, g.move(p, v)
	case Attack:
		return g.attack(p, v)
	case UseUltimate:
		return g.useUltimate(p)
	case Config:
		return Result{}, g.applyConfig(v)
	case MapInfo:
		return Result{}, g.setStatic(&g.mapSet, func() { g.MapName = v.Name })
	case WorldSize:
		if !(v.Width > 0) || !(v.Height > 0) || math.IsInf(v.Width, 0) || math.IsInf(v.Height, 0) {
			return Result{}, fmt.Errorf("world-size %vx%v: %w", v.Width, v.Height, ErrUnknownInput)
		}
		return Result{}, g.setStatic(&g.worldSizeSet, func() {
			g.Tuning.WorldWidth, g.Tuning.WorldHeight = v.Width, v.Height
			for _, pl := range g.Players {
				pl.X = clamp(pl.X, 0, v.Width)
				pl.Y = clamp(pl.Y, 0, v.Height)
			}
		})
	case Obstacles:
		return Result{}, g.setStatic(&g.obstaclesSet, func() { g.Obstacles = v.Data })
	case Decorations:
		return Result{}, g.setStatic(&g.decorationsSet, func() { g.Decorations = v.Data })
	case NewSession:
		return Result{}, g.newSession()
	case TryCollectChest:
		return g.TryCollectChest(playerID, v.ChestID)
	case AwardExp:
		return g.AwardExp(v.Amount)
	}
	return Result{}, fmt.Errorf("%s: %w", in.Kind(), ErrUnknownInput)
}

func (g *GameState) move(p *Player, m Move) error {
	if p.IsDead {
		return ErrPlayerDead
	}
	t := g.Tuning
	dx, dy := m.DX, m.DY
	if math.IsNaN(dx) || math.IsNaN(dy) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		dx, dy = 0, 0
	}
	// 方向向量长度不超过 1
	if mag := math.Hypot(dx, dy); mag > 1 {
		dx, dy = dx/mag, dy/mag
	}
	p.VX, p.VY = dx*t.PlayerSpeed, dy*t.PlayerSpeed
	// 单次上限之外，累计移动时长不超过已流逝的模拟时间
	dt := math.Min(clampPositive(m.DeltaTime, 0, t.MaxMoveDelta), p.moveBudget)
	p.moveBudget -= dt

	p.X = clamp(p.X+p.VX*dt, 0, t.WorldWidth)
	p.Y = clamp(p.Y+p.VY*dt, 0, t.WorldHeight)
	if p.VX != 0 || p.VY != 0 {
		p.Facing = math.Atan2(p.VY, p.VX)
	}
	return nil
}

func (g *GameState) attack(p *Player, a Attack) (Result, error) {
	if p.IsDead {
		return Result{}, ErrPlayerDead
	}
	if g.IsGameOver {
		return Result{}, ErrGameOver
	}
	t := g.Tuning
	angle := a.Angle
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		angle = p.Facing
	}
	proj := &Projectile{
		ID:          g.newID(),
		OwnerID:     p.ID,
		Weapon:      a.Weapon,
		X:           p.X,
		Y:           p.Y,
		Angle:       normalizeAngle(angle),
		Damage:      clampPositive(a.Damage, 10, t.MaxProjectileDamage),
		Speed:       clampPositive(a.Speed, 400, t.MaxProjectileSpeed),
		Size:        clampPositive(a.Size, t.DefaultProjectileSize, t.MaxProjectileSize),
		MaxDistance: clampPositive(a.MaxDistance, 600, t.MaxProjectileDistance),
	}
	if a.Homing {
		proj.Homing = true
		proj.TurnRatePerSec = clampPositive(a.TurnRatePerSec, 4, t.MaxTurnRatePerSec)
		proj.AssignedTargetID = a.TargetID
	}
	g.Projectiles = append(g.Projectiles, proj)
	return Result{ProjectileN: 1}, nil
}

func (g *GameState) applyConfig(c Config) error {
	if g.configSet {
		return fmt.Errorf("config: %w", ErrStaticAlreadySet)
	}
	g.configSet = true
	t := g.Tuning
	if c.FinalWave != nil && *c.FinalWave >= 0 {
		t.FinalWave = *c.FinalWave
	}
	if c.WaveDuration != nil && *c.WaveDuration > 0 {
		t.WaveDuration = *c.WaveDuration
	}
	if c.SpawnInterval != nil && *c.SpawnInterval >= t.MinSpawnInterval {
		t.SpawnInterval = *c.SpawnInterval
	}
	if c.MaxEnemies != nil && *c.MaxEnemies >= 0 {
		t.MaxEnemies = *c.MaxEnemies
	}
	g.SetTuning(t)
	return nil
}

func (g *GameState) setStatic(flag *bool, apply func()) error {
	if *flag {
		return ErrStaticAlreadySet
	}
	*flag = true
	apply()
	return nil
}

func (g *GameState) newSession() error {
	if !g.IsGameOver {
		return ErrGameNotOver
	}
	g.resetRound()
	for _, p := range g.Players {
		p.reset(g.Tuning)
	}
	return nil
}

// TryCollectChest 原子地检查并移除宝箱：同一宝箱只有一个请求能成功
func (g *GameState) TryCollectChest(playerID, chestID string) (Result, error) {
	p, ok := g.Players[playerID]
	if !ok {
		return Result{}, ErrUnknownPlayer
	}
	if p.IsDead {
		return Result{}, ErrPlayerDead
	}
	for i, c := range g.Chests {
		if c.ID != chestID {
			continue
		}
		g.Chests = append(g.Chests[:i], g.Chests[i+1:]...)
		if c.Type == "rare" {
			p.Gold += g.Tuning.RareChestGold
		} else {
			p.Gold += g.Tuning.ChestGold
		}
		g.emit(Event{Kind: EventChestCollected, PlayerID: playerID, EntityID: chestID})
		return Result{ChestID: chestID}, nil
	}
	return Result{}, fmt.Errorf("chest %q: %w", chestID, ErrChestUnavailable)
}

// AwardExp 经验为团队共享：给房间内所有玩家加经验。单次数额有上限
func (g *GameState) AwardExp(amount float64) (Result, error) {
	if math.IsNaN(amount) || amount <= 0 || amount > g.Tuning.MaxExpAward {
		return Result{}, fmt.Errorf("award %v: %w", amount, ErrExpAwardOutOfRange)
	}
	ups := 0
	for _, id := range g.sortedPlayerIDs() {
		ups += g.Players[id].addExperience(amount, g.Tuning.ExpPerLevel)
	}
	return Result{LevelUps: ups}, nil
}
