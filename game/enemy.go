package game

import "math"

// Enemy 敌人实体。死亡分两阶段：存活 → IsDying（滑行淡出，碰撞半径为 0）→ 移除
type Enemy struct {
	ID        string
	X, Y      float64
	Health    float64
	MaxHealth float64
	Speed     float64
	Size      float64
	Damage    float64

	AttackCooldown float64 // 秒
	LastAttackAt   float64 // gameTime；负值表示从未攻击
	HitFlashTime   float64

	IsDying      bool
	DeathElapsed float64
	KnockbackVX  float64 // 平均滑行速度，总位移 = V * DeathDuration
	KnockbackVY  float64
	deathStartX  float64
	deathStartY  float64
}

func (e *Enemy) alive() bool { return !e.IsDying && e.Health > 0 }

// applyDamage 扣血并刷新受击闪烁，返回是否致死
func (e *Enemy) applyDamage(amount, flash float64) bool {
	if !e.alive() {
		return false
	}
	e.Health -= amount
	e.HitFlashTime = flash
	return e.Health <= 0
}

// beginDeath 进入死亡滑行：背离 (fromX, fromY)，碰撞半径立即归零
func (e *Enemy) beginDeath(fromX, fromY, fallbackAngle float64, t Tuning) {
	dx, dy := e.X-fromX, e.Y-fromY
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		dx, dy = math.Cos(fallbackAngle), math.Sin(fallbackAngle)
	} else {
		dx, dy = dx/d, dy/d
	}
	e.IsDying = true
	e.Health = 0
	e.Size = 0
	e.DeathElapsed = 0
	e.deathStartX, e.deathStartY = e.X, e.Y
	if t.DeathDuration > 0 {
		e.KnockbackVX = dx * t.DeathKnockback / t.DeathDuration
		e.KnockbackVY = dy * t.DeathKnockback / t.DeathDuration
	}
}

// advanceDeath 推进死亡动画，返回是否已结束。
// 缓出曲线按已过时间直接求位置，与步长无关。
func (e *Enemy) advanceDeath(dt, duration float64) bool {
	e.DeathElapsed += dt
	if duration <= 0 || e.DeathElapsed >= duration {
		return true
	}
	u := e.DeathElapsed / duration
	ease := 1 - (1-u)*(1-u)
	e.X = e.deathStartX + e.KnockbackVX*duration*ease
	e.Y = e.deathStartY + e.KnockbackVY*duration*ease
	return false
}
