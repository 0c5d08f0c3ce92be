package game

import (
	"fmt"
	"math"
)

// quietTuning 关闭刷怪与波次推进，便于精确断言
func quietTuning() Tuning {
	t := DefaultTuning()
	t.BaseSpawnCount = 0
	t.SpawnCountPerWave = 0
	t.WaveDuration = 0
	return t
}

func newTestState(t Tuning) *GameState {
	g := NewGameState(t, 1)
	n := 0
	g.SetIDGenerator(func() string {
		n++
		return fmt.Sprintf("e%d", n)
	})
	return g
}

func addEnemy(g *GameState, id string, x, y, hp float64) *Enemy {
	t := g.Tuning
	e := &Enemy{
		ID: id, X: x, Y: y,
		Health: hp, MaxHealth: hp,
		Speed: t.EnemyBaseSpeed, Size: t.EnemySize, Damage: t.EnemyDamage,
		AttackCooldown: t.EnemyAttackCD, LastAttackAt: -t.EnemyAttackCD,
	}
	g.Enemies = append(g.Enemies, e)
	return e
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }
