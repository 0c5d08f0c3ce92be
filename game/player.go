package game

import "math"

// Player 房间内的玩家实体（服务端权威状态）
type Player struct {
	ID          string
	Nickname    string
	CharacterID string

	X, Y   float64
	VX, VY float64
	Facing float64 // 弧度

	Health    float64
	MaxHealth float64
	Energy    float64
	MaxEnergy float64

	Level      int
	Experience float64
	Gold       int
	IsDead     bool

	// 可用于 move 的累计时长；随模拟时间增长，封顶 moveBudgetCap 个 MaxMoveDelta
	moveBudget float64
}

const moveBudgetCap = 2

// JoinOptions 加入时客户端声明的属性（可选）
type JoinOptions struct {
	Nickname    string
	CharacterID string
	MaxHealth   float64 // <=0 时使用默认值
}

func newPlayer(id string, opts JoinOptions, t Tuning) *Player {
	maxHP := t.PlayerMaxHealth
	// 协商血量也受上限约束，避免客户端声明任意值
	if opts.MaxHealth > 0 && !math.IsInf(opts.MaxHealth, 0) {
		maxHP = math.Min(opts.MaxHealth, t.PlayerMaxHealth*5)
	}
	return &Player{
		ID:          id,
		Nickname:    opts.Nickname,
		CharacterID: opts.CharacterID,
		X:           t.WorldWidth / 2,
		Y:           t.WorldHeight / 2,
		Health:      maxHP,
		MaxHealth:   maxHP,
		MaxEnergy:   t.PlayerMaxEnergy,
		Level:       1,
		moveBudget:  t.MaxMoveDelta,
	}
}

// reset 新一局：保留身份与上限，恢复数值
func (p *Player) reset(t Tuning) {
	p.X, p.Y = t.WorldWidth/2, t.WorldHeight/2
	p.VX, p.VY = 0, 0
	p.Health = p.MaxHealth
	p.Energy = 0
	p.Level = 1
	p.Experience = 0
	p.Gold = 0
	p.IsDead = false
	p.moveBudget = t.MaxMoveDelta
}

func (p *Player) takeDamage(amount float64) (died bool) {
	if p.IsDead {
		return false
	}
	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		p.IsDead = true
		p.VX, p.VY = 0, 0
		return true
	}
	return false
}

// addExperience 累加经验并处理升级，返回升级次数
func (p *Player) addExperience(amount, perLevel float64) int {
	p.Experience += amount
	ups := 0
	for perLevel > 0 && p.Experience >= perLevel*float64(p.Level) {
		p.Experience -= perLevel * float64(p.Level)
		p.Level++
		ups++
	}
	return ups
}
