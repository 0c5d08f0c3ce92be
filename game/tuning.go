package game

import "fmt"

// Tuning 房间的数值配置（可通过 /admin/config 热更新）
type Tuning struct {
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// 玩家
	PlayerSize        float64 `json:"playerSize"`
	PlayerSpeed       float64 `json:"playerSpeed"` // 像素/秒
	PlayerMaxHealth   float64 `json:"playerMaxHealth"`
	PlayerMaxEnergy   float64 `json:"playerMaxEnergy"`
	EnergyRegenPerSec float64 `json:"energyRegenPerSec"`
	MaxMoveDelta      float64 `json:"maxMoveDelta"` // 单次 move 输入允许的最大 deltaTime（秒）

	// 投射物上限：客户端参数一律按此裁剪
	MaxProjectileDamage   float64 `json:"maxProjectileDamage"`
	MaxProjectileSpeed    float64 `json:"maxProjectileSpeed"`
	MaxProjectileSize     float64 `json:"maxProjectileSize"`
	MaxProjectileDistance float64 `json:"maxProjectileDistance"`
	MaxTurnRatePerSec     float64 `json:"maxTurnRatePerSec"`
	DefaultProjectileSize float64 `json:"defaultProjectileSize"`
	ProjectileBoundsPad   float64 `json:"projectileBoundsPad"`

	// 敌人
	MaxEnemies        int     `json:"maxEnemies"`
	BaseSpawnCount    int     `json:"baseSpawnCount"`
	SpawnCountPerWave int     `json:"spawnCountPerWave"`
	MaxSpawnCount     int     `json:"maxSpawnCount"`
	SpawnMargin       float64 `json:"spawnMargin"`
	EnemyBaseHealth   float64 `json:"enemyBaseHealth"`
	EnemyHealthScale  float64 `json:"enemyHealthScale"` // 每波乘数，按 (wave-1) 次幂
	EnemyBaseSpeed    float64 `json:"enemyBaseSpeed"`
	EnemySpeedPerWave float64 `json:"enemySpeedPerWave"`
	EnemyMaxSpeed     float64 `json:"enemyMaxSpeed"`
	EnemySize         float64 `json:"enemySize"`
	EnemyDamage       float64 `json:"enemyDamage"`
	EnemyAttackCD     float64 `json:"enemyAttackCooldown"` // 秒
	HitFlashDuration  float64 `json:"hitFlashDuration"`
	DeathDuration     float64 `json:"deathDuration"`
	DeathKnockback    float64 `json:"deathKnockback"` // 死亡滑行距离（像素）

	// 波次
	WaveDuration     float64 `json:"waveDuration"`
	SpawnInterval    float64 `json:"spawnInterval"`
	MinSpawnInterval float64 `json:"minSpawnInterval"`
	SpawnIntervalMul float64 `json:"spawnIntervalMul"` // 每波缩短系数
	FinalWave        int     `json:"finalWave"`

	// 拾取
	OrbSize       float64 `json:"orbSize"`
	OrbBaseValue  float64 `json:"orbBaseValue"`
	ChestGold     int     `json:"chestGold"`
	RareChestGold int     `json:"rareChestGold"`
	MaxExpAward   float64 `json:"maxExpAward"`
	ExpPerLevel   float64 `json:"expPerLevel"`

	// 大招
	UltimateNovaCount   int     `json:"ultimateNovaCount"`
	UltimateNovaDamage  float64 `json:"ultimateNovaDamage"`
	UltimateShockRadius float64 `json:"ultimateShockRadius"`
	UltimateShockDamage float64 `json:"ultimateShockDamage"`
	UltimateHealAmount  float64 `json:"ultimateHealAmount"`
}

// DefaultTuning 默认数值
func DefaultTuning() Tuning {
	return Tuning{
		WorldWidth:  2000,
		WorldHeight: 2000,

		PlayerSize:        32,
		PlayerSpeed:       220,
		PlayerMaxHealth:   100,
		PlayerMaxEnergy:   100,
		EnergyRegenPerSec: 5,
		MaxMoveDelta:      0.1,

		MaxProjectileDamage:   500,
		MaxProjectileSpeed:    2000,
		MaxProjectileSize:     64,
		MaxProjectileDistance: 1500,
		MaxTurnRatePerSec:     12,
		DefaultProjectileSize: 8,
		ProjectileBoundsPad:   50,

		MaxEnemies:        60,
		BaseSpawnCount:    2,
		SpawnCountPerWave: 1,
		MaxSpawnCount:     8,
		SpawnMargin:       30,
		EnemyBaseHealth:   30,
		EnemyHealthScale:  1.15,
		EnemyBaseSpeed:    60,
		EnemySpeedPerWave: 4,
		EnemyMaxSpeed:     160,
		EnemySize:         28,
		EnemyDamage:       10,
		EnemyAttackCD:     1,
		HitFlashDuration:  0.12,
		DeathDuration:     0.5,
		DeathKnockback:    40,

		WaveDuration:     30,
		SpawnInterval:    2,
		MinSpawnInterval: 0.4,
		SpawnIntervalMul: 0.9,
		FinalWave:        20,

		OrbSize:       12,
		OrbBaseValue:  5,
		ChestGold:     10,
		RareChestGold: 50,
		MaxExpAward:   1000,
		ExpPerLevel:   100,

		UltimateNovaCount:   12,
		UltimateNovaDamage:  40,
		UltimateShockRadius: 220,
		UltimateShockDamage: 60,
		UltimateHealAmount:  40,
	}
}

// Validate 拒绝会让模拟失效的取值
func (t Tuning) Validate() error {
	switch {
	case t.WorldWidth <= 0 || t.WorldHeight <= 0:
		return fmt.Errorf("world size %vx%v must be positive", t.WorldWidth, t.WorldHeight)
	case t.PlayerSize <= 0 || t.EnemySize < 0:
		return fmt.Errorf("entity sizes must be positive")
	case t.MaxEnemies < 0 || t.MaxSpawnCount < 0:
		return fmt.Errorf("enemy ceilings must be non-negative")
	case t.MinSpawnInterval <= 0 || t.SpawnInterval < t.MinSpawnInterval:
		return fmt.Errorf("spawn interval %v must be >= min %v > 0", t.SpawnInterval, t.MinSpawnInterval)
	case t.SpawnIntervalMul <= 0 || t.SpawnIntervalMul > 1:
		return fmt.Errorf("spawn interval multiplier %v must be in (0, 1]", t.SpawnIntervalMul)
	case t.EnemyHealthScale <= 0:
		return fmt.Errorf("health scale must be positive")
	case t.DeathDuration < 0 || t.WaveDuration < 0:
		return fmt.Errorf("durations must be non-negative")
	case t.MaxExpAward <= 0:
		return fmt.Errorf("max exp award must be positive")
	}
	return nil
}
