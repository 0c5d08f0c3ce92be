package game

import (
	"math"
	"testing"
)

func TestProjectileLifetime(t *testing.T) {
	// want = ceil(D / (S*dt))，按精确有理数手算
	cases := []struct {
		name     string
		dt, s, d float64
		want     int
	}{
		{"binary exact", 0.125, 100, 100, 8},
		{"60hz half step", 1.0 / 60, 100, 50, 30},
		{"60hz", 1.0 / 60, 600, 600, 60},
		{"60hz uneven", 1.0 / 60, 400, 600, 90},
		{"30hz", 1.0 / 30, 100, 100, 30},
		{"30hz fast", 1.0 / 30, 900, 900, 30},
		{"16ms", 0.016, 250, 100, 25},
		{"20ms partial", 0.02, 333, 100, 16},
		{"100ms partial", 0.1, 70, 100, 15},
		{"100ms exact", 0.1, 300, 300, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestState(quietTuning())
			g.AddPlayer("A", JoinOptions{})
			if _, err := g.HandleInput("A", Attack{Angle: 0, Damage: 10, Speed: tc.s, MaxDistance: tc.d}); err != nil {
				t.Fatalf("attack: %v", err)
			}
			for tick := 1; tick <= tc.want; tick++ {
				g.Update(tc.dt)
				alive := len(g.Projectiles) == 1
				if tick < tc.want && !alive {
					t.Fatalf("projectile removed early at tick %d (want %d)", tick, tc.want)
				}
				if tick == tc.want && alive {
					t.Fatalf("projectile still alive at tick %d, distance=%v", tick, g.Projectiles[0].Distance)
				}
			}
		})
	}
}

func TestProjectileLeavesBounds(t *testing.T) {
	tu := quietTuning()
	g := newTestState(tu)
	p := g.AddPlayer("A", JoinOptions{})
	p.X, p.Y = 5, 5
	if _, err := g.HandleInput("A", Attack{Angle: math.Pi, Speed: 1000, MaxDistance: 1000}); err != nil {
		t.Fatalf("attack: %v", err)
	}
	g.Update(0.1)
	if len(g.Projectiles) != 0 {
		t.Fatalf("expected projectile outside bounds pad to be dropped, x=%v", g.Projectiles[0].X)
	}
}

func TestAttackClampsClientValues(t *testing.T) {
	tu := quietTuning()
	g := newTestState(tu)
	g.AddPlayer("A", JoinOptions{})
	_, err := g.HandleInput("A", Attack{Damage: 1e9, Speed: 1e9, Size: -3, MaxDistance: 1e9, Homing: true, TurnRatePerSec: 1e6})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	p := g.Projectiles[0]
	if p.Damage != tu.MaxProjectileDamage || p.Speed != tu.MaxProjectileSpeed {
		t.Fatalf("damage/speed not clamped: %v/%v", p.Damage, p.Speed)
	}
	if p.Size != tu.DefaultProjectileSize {
		t.Fatalf("size=%v want default %v", p.Size, tu.DefaultProjectileSize)
	}
	if p.MaxDistance != tu.MaxProjectileDistance {
		t.Fatalf("maxDistance=%v want %v", p.MaxDistance, tu.MaxProjectileDistance)
	}
	if p.TurnRatePerSec != tu.MaxTurnRatePerSec {
		t.Fatalf("turn rate=%v want %v", p.TurnRatePerSec, tu.MaxTurnRatePerSec)
	}
}

func TestHomingTurnClamp(t *testing.T) {
	cases := []struct {
		name   string
		ex, ey float64
	}{
		{"behind", 400, 1000},
		{"above", 1000, 600},
		{"below", 1000, 1400},
		{"ahead", 1400, 1000},
		{"diagonal", 700, 1300},
	}
	const dt = 1.0 / 60
	const turn = 2.0
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestState(quietTuning())
			addEnemy(g, "target", tc.ex, tc.ey, 1e6)
			g.Projectiles = append(g.Projectiles, &Projectile{
				ID: "p", X: 1000, Y: 1000, Angle: 0, Speed: 200, Damage: 1,
				Size: 8, MaxDistance: 1e6, Homing: true, TurnRatePerSec: turn,
			})
			for i := 0; i < 240 && len(g.Projectiles) == 1; i++ {
				before := g.Projectiles[0].Angle
				g.Update(dt)
				if len(g.Projectiles) == 0 {
					break
				}
				delta := math.Abs(normalizeAngle(g.Projectiles[0].Angle - before))
				if delta > turn*dt+1e-9 {
					t.Fatalf("tick %d: turned %v > limit %v", i, delta, turn*dt)
				}
			}
		})
	}
}

func TestHomingPrefersAssignedTarget(t *testing.T) {
	g := newTestState(quietTuning())
	addEnemy(g, "near", 1100, 1000, 100)
	far := addEnemy(g, "far", 1000, 1500, 100)
	p := &Projectile{X: 1000, Y: 1000, Homing: true, AssignedTargetID: "far"}
	got, ok := g.findTarget(p)
	if !ok || got != far {
		t.Fatalf("expected assigned target, got %+v", got)
	}

	far.Health = 0
	far.IsDying = true
	got, ok = g.findTarget(p)
	if !ok || got.ID != "near" {
		t.Fatalf("expected fallback to nearest living enemy, got %+v", got)
	}
}

func TestFindTargetNoEnemies(t *testing.T) {
	g := newTestState(quietTuning())
	if _, ok := g.findTarget(&Projectile{Homing: true, AssignedTargetID: "gone"}); ok {
		t.Fatalf("expected no target")
	}
}

func TestProjectileFirstHitOnly(t *testing.T) {
	g := newTestState(quietTuning())
	a := addEnemy(g, "a", 1010, 1000, 100)
	b := addEnemy(g, "b", 1010, 1000, 100)
	g.Projectiles = append(g.Projectiles, &Projectile{
		ID: "p", X: 1000, Y: 1000, Speed: 60, Damage: 10, Size: 8, MaxDistance: 500,
	})
	g.Update(1.0 / 60)
	if len(g.Projectiles) != 0 {
		t.Fatalf("projectile should be consumed")
	}
	if a.Health+b.Health != 190 {
		t.Fatalf("expected exactly one enemy hit, got %v and %v", a.Health, b.Health)
	}
}
