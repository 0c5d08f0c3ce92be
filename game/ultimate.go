package game

import (
	"fmt"
	"math"
)

// UltimateFunc 角色大招的结算逻辑
type UltimateFunc func(g *GameState, p *Player) Result

var ultimates = map[string]UltimateFunc{
	"mage":   novaUltimate,
	"knight": shockwaveUltimate,
	"cleric": healUltimate,
}

// DefaultCharacter 未声明角色时使用
const DefaultCharacter = "mage"

// useUltimate 按角色分派；能量需满格并被清空
func (g *GameState) useUltimate(p *Player) (Result, error) {
	if p.IsDead {
		return Result{}, ErrPlayerDead
	}
	if g.IsGameOver {
		return Result{}, ErrGameOver
	}
	char := p.CharacterID
	if char == "" {
		char = DefaultCharacter
	}
	fn, ok := ultimates[char]
	if !ok {
		return Result{}, fmt.Errorf("character %q: %w", char, ErrUnknownCharacter)
	}
	if p.Energy < p.MaxEnergy {
		return Result{}, ErrInsufficientEnergy
	}
	p.Energy = 0
	return fn(g, p), nil
}

// novaUltimate 向四周均匀发射一圈投射物
func novaUltimate(g *GameState, p *Player) Result {
	t := g.Tuning
	n := t.UltimateNovaCount
	for i := 0; i < n; i++ {
		a := normalizeAngle(2 * math.Pi * float64(i) / float64(n))
		g.Projectiles = append(g.Projectiles, &Projectile{
			ID:          g.newID(),
			OwnerID:     p.ID,
			Weapon:      "nova",
			X:           p.X,
			Y:           p.Y,
			Angle:       a,
			Speed:       600,
			Damage:      t.UltimateNovaDamage,
			Size:        t.DefaultProjectileSize * 2,
			MaxDistance: 500,
		})
	}
	return Result{ProjectileN: n}
}

// shockwaveUltimate 对半径内所有存活敌人造成伤害
func shockwaveUltimate(g *GameState, p *Player) Result {
	t := g.Tuning
	for _, e := range g.Enemies {
		if !e.alive() || dist(p.X, p.Y, e.X, e.Y) > t.UltimateShockRadius {
			continue
		}
		if e.applyDamage(t.UltimateShockDamage, t.HitFlashDuration) {
			g.killEnemy(e, p.X, p.Y, math.Atan2(e.Y-p.Y, e.X-p.X), p.ID)
		}
	}
	return Result{}
}

// healUltimate 治疗所有存活队友
func healUltimate(g *GameState, _ *Player) Result {
	for _, pl := range g.Players {
		if pl.IsDead {
			continue
		}
		pl.Health = math.Min(pl.MaxHealth, pl.Health+g.Tuning.UltimateHealAmount)
	}
	return Result{}
}
