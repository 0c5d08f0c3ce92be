package game

import "math"

// SpawnCount 单次刷怪数量：基础值 + 每波线性增量，封顶
func SpawnCount(t Tuning, wave int) int {
	n := t.BaseSpawnCount + t.SpawnCountPerWave*(wave-1)
	if n > t.MaxSpawnCount {
		n = t.MaxSpawnCount
	}
	if n < 0 {
		n = 0
	}
	return n
}

// EnemyHealth 血量按 scale^(wave-1) 放大
func EnemyHealth(t Tuning, wave int) float64 {
	return t.EnemyBaseHealth * math.Pow(t.EnemyHealthScale, float64(wave-1))
}

func (g *GameState) spawnEnemies() {
	t := g.Tuning
	if g.GameTime-g.LastSpawnTime < g.SpawnInterval {
		return
	}
	g.LastSpawnTime = g.GameTime
	if _, _, ok := g.nearestLivingPlayer(0, 0); !ok {
		return
	}
	room := t.MaxEnemies - len(g.Enemies)
	n := SpawnCount(t, g.Wave)
	if n > room {
		n = room
	}
	for i := 0; i < n; i++ {
		g.Enemies = append(g.Enemies, g.newEnemy())
	}
}

func (g *GameState) newEnemy() *Enemy {
	t := g.Tuning
	x, y := g.edgePosition()
	hp := EnemyHealth(t, g.Wave)
	speed := math.Min(t.EnemyBaseSpeed+t.EnemySpeedPerWave*float64(g.Wave-1), t.EnemyMaxSpeed)
	return &Enemy{
		ID:             g.newID(),
		X:              x,
		Y:              y,
		Health:         hp,
		MaxHealth:      hp,
		Speed:          speed,
		Size:           t.EnemySize,
		Damage:         t.EnemyDamage * (1 + 0.1*float64(g.Wave-1)),
		AttackCooldown: t.EnemyAttackCD,
		LastAttackAt:   -t.EnemyAttackCD,
	}
}

// edgePosition 四条边界等概率，向外偏移固定边距
func (g *GameState) edgePosition() (float64, float64) {
	t := g.Tuning
	m := t.SpawnMargin
	switch g.rng.Intn(4) {
	case 0:
		return g.rng.Float64() * t.WorldWidth, -m
	case 1:
		return g.rng.Float64() * t.WorldWidth, t.WorldHeight + m
	case 2:
		return -m, g.rng.Float64() * t.WorldHeight
	default:
		return t.WorldWidth + m, g.rng.Float64() * t.WorldHeight
	}
}

// advanceWave 波次按时长推进，刷怪间隔缩短（有下限）
func (g *GameState) advanceWave() {
	t := g.Tuning
	if t.WaveDuration <= 0 || g.GameTime-g.WaveStartTime < t.WaveDuration {
		return
	}
	g.Wave++
	g.WaveStartTime = g.GameTime
	g.SpawnInterval = math.Max(t.MinSpawnInterval, g.SpawnInterval*t.SpawnIntervalMul)

	if t.FinalWave > 0 && g.Wave > t.FinalWave {
		g.IsGameOver = true
		g.IsVictory = true
		g.emit(Event{Kind: EventGameOver, Victory: true})
		return
	}
	g.spawnChest()
	g.emit(Event{Kind: EventWaveStarted, Wave: g.Wave})
}

func (g *GameState) spawnChest() {
	t := g.Tuning
	typ := "common"
	if g.Wave%5 == 0 {
		typ = "rare"
	}
	pad := t.PlayerSize
	g.Chests = append(g.Chests, &Chest{
		ID:   g.newID(),
		X:    pad + g.rng.Float64()*math.Max(0, t.WorldWidth-2*pad),
		Y:    pad + g.rng.Float64()*math.Max(0, t.WorldHeight-2*pad),
		Type: typ,
	})
}
