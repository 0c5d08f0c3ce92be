package game

import "math"

const distanceEpsilon = 1e-9

// Projectile 投射物。命中即消失（首个接触者生效，无穿透）
type Projectile struct {
	ID          string
	OwnerID     string
	Weapon      string
	X, Y        float64
	Angle       float64
	Speed       float64
	Damage      float64
	Size        float64
	Distance    float64
	MaxDistance float64

	Homing           bool
	TurnRatePerSec   float64
	AssignedTargetID string
}

// findTarget 优先取仍存活的指定目标，否则取最近的存活敌人
func (g *GameState) findTarget(p *Projectile) (*Enemy, bool) {
	if p.AssignedTargetID != "" {
		for _, e := range g.Enemies {
			if e.ID == p.AssignedTargetID && e.alive() {
				return e, true
			}
		}
	}
	return g.nearestEnemy(p.X, p.Y)
}

func (g *GameState) nearestEnemy(x, y float64) (*Enemy, bool) {
	var best *Enemy
	bestD := math.Inf(1)
	for _, e := range g.Enemies {
		if !e.alive() {
			continue
		}
		if d := dist(x, y, e.X, e.Y); d < bestD {
			best, bestD = e, d
		}
	}
	return best, best != nil
}

// steer 朝目标转向，单帧转角不超过 turnRatePerSec*dt
func (p *Projectile) steer(tx, ty, dt float64) {
	want := math.Atan2(ty-p.Y, tx-p.X)
	delta := normalizeAngle(want - p.Angle)
	limit := p.TurnRatePerSec * dt
	delta = clamp(delta, -limit, limit)
	p.Angle = normalizeAngle(p.Angle + delta)
}

// updateProjectiles 推进所有投射物并结算命中。
// 敌人本帧尚未移动，命中按移动前位置判定（一帧位置滞后）。
func (g *GameState) updateProjectiles(dt float64) {
	t := g.Tuning
	kept := g.Projectiles[:0]
	for _, p := range g.Projectiles {
		if p.Homing {
			if target, ok := g.findTarget(p); ok {
				p.steer(target.X, target.Y, dt)
			}
		}
		step := p.Speed * dt
		p.X += math.Cos(p.Angle) * step
		p.Y += math.Sin(p.Angle) * step
		p.Distance += step

		// 累加的步长有浮点误差，按容差判定到达射程
		if p.Distance >= p.MaxDistance-distanceEpsilon {
			continue
		}
		pad := t.ProjectileBoundsPad
		if p.X < -pad || p.Y < -pad || p.X > t.WorldWidth+pad || p.Y > t.WorldHeight+pad {
			continue
		}
		if g.resolveProjectileHit(p) {
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(g.Projectiles); i++ {
		g.Projectiles[i] = nil
	}
	g.Projectiles = kept
}

// resolveProjectileHit 查找首个接触的敌人并结算，命中返回 true
func (g *GameState) resolveProjectileHit(p *Projectile) bool {
	for _, e := range g.Enemies {
		if !e.alive() {
			continue
		}
		if dist(p.X, p.Y, e.X, e.Y) >= (p.Size+e.Size)/2 {
			continue
		}
		if e.applyDamage(p.Damage, g.Tuning.HitFlashDuration) {
			g.killEnemy(e, p.X-math.Cos(p.Angle), p.Y-math.Sin(p.Angle), p.Angle, p.OwnerID)
		}
		return true
	}
	return false
}
