package game

import (
	"math"
)

// Update 推进一帧。顺序固定：
// 玩家被动 → 投射物 → 敌人 AI/战斗 → 拾取 → 刷怪 → 波次 → 终局判定
func (g *GameState) Update(dt float64) {
	if math.IsNaN(dt) || dt <= 0 || g.IsGameOver {
		return
	}
	g.GameTime += dt

	g.updatePlayers(dt)
	g.updateProjectiles(dt)
	g.updateEnemies(dt)
	g.collectOrbs()
	g.spawnEnemies()
	g.advanceWave()
	g.checkTerminal()
}

func (g *GameState) updatePlayers(dt float64) {
	for _, p := range g.Players {
		p.moveBudget = math.Min(p.moveBudget+dt, g.Tuning.MaxMoveDelta*moveBudgetCap)
		if p.IsDead {
			continue
		}
		p.Energy = math.Min(p.MaxEnergy, p.Energy+g.Tuning.EnergyRegenPerSec*dt)
	}
}

func (g *GameState) updateEnemies(dt float64) {
	t := g.Tuning
	kept := g.Enemies[:0]
	for _, e := range g.Enemies {
		e.HitFlashTime = math.Max(0, e.HitFlashTime-dt)

		if e.IsDying {
			if e.advanceDeath(dt, t.DeathDuration) {
				continue
			}
			kept = append(kept, e)
			continue
		}

		kept = append(kept, e)
		target, d, ok := g.nearestLivingPlayer(e.X, e.Y)
		if !ok {
			continue
		}
		contact := (e.Size + t.PlayerSize) / 2
		// 停在接触圈内侧，保证下一帧仍判定为接触
		if stop := contact * 0.8; d > stop {
			step := math.Min(e.Speed*dt, d-stop)
			e.X += (target.X - e.X) / d * step
			e.Y += (target.Y - e.Y) / d * step
			d = dist(e.X, e.Y, target.X, target.Y)
		}
		if d > contact {
			continue
		}
		// 冷却按敌人计，而非按 (敌人, 玩家) 对
		if g.GameTime-e.LastAttackAt < e.AttackCooldown {
			continue
		}
		e.LastAttackAt = g.GameTime
		if target.takeDamage(e.Damage) {
			g.emit(Event{Kind: EventPlayerDied, PlayerID: target.ID})
		}
	}
	for i := len(kept); i < len(g.Enemies); i++ {
		g.Enemies[i] = nil
	}
	g.Enemies = kept
}

// killEnemy 进入死亡阶段并掉落经验球
func (g *GameState) killEnemy(e *Enemy, fromX, fromY, fallbackAngle float64, killerID string) {
	x, y := e.X, e.Y
	e.beginDeath(fromX, fromY, fallbackAngle, g.Tuning)
	g.ExperienceOrbs = append(g.ExperienceOrbs, &ExperienceOrb{
		ID:    g.newID(),
		X:     x,
		Y:     y,
		Value: g.Tuning.OrbBaseValue + float64(g.Wave-1),
	})
	g.emit(Event{Kind: EventEnemyKilled, EntityID: e.ID, PlayerID: killerID})
}

func (g *GameState) collectOrbs() {
	if len(g.ExperienceOrbs) == 0 {
		return
	}
	reach := (g.Tuning.PlayerSize + g.Tuning.OrbSize) / 2
	ids := g.sortedPlayerIDs()
	kept := g.ExperienceOrbs[:0]
	for _, o := range g.ExperienceOrbs {
		collected := false
		for _, id := range ids {
			p := g.Players[id]
			if p.IsDead || dist(p.X, p.Y, o.X, o.Y) >= reach {
				continue
			}
			g.emit(Event{Kind: EventOrbCollected, PlayerID: p.ID, EntityID: o.ID, Value: o.Value})
			collected = true
			break
		}
		if !collected {
			kept = append(kept, o)
		}
	}
	for i := len(kept); i < len(g.ExperienceOrbs); i++ {
		g.ExperienceOrbs[i] = nil
	}
	g.ExperienceOrbs = kept
}

func (g *GameState) checkTerminal() {
	if g.IsGameOver || len(g.Players) == 0 {
		return
	}
	for _, p := range g.Players {
		if !p.IsDead {
			return
		}
	}
	g.IsGameOver = true
	g.emit(Event{Kind: EventGameOver})
}
