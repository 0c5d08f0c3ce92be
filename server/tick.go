package server

import (
	"context"
	"runtime/debug"
	"time"
)

// Scheduler 单协程驱动所有房间：高频模拟 Tick 与低频广播 Tick 相互独立
type Scheduler struct {
	registry          *Registry
	simInterval       time.Duration
	broadcastInterval time.Duration
	maxDelta          time.Duration
	done              chan struct{}
}

func NewScheduler(reg *Registry, simHz, broadcastHz int, maxDelta time.Duration) *Scheduler {
	return &Scheduler{
		registry:          reg,
		simInterval:       time.Second / time.Duration(simHz),
		broadcastInterval: time.Second / time.Duration(broadcastHz),
		maxDelta:          maxDelta,
		done:              make(chan struct{}),
	}
}

// Run 阻塞运行直到 ctx 结束；退出前做最后一次广播
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)
	simTicker := time.NewTicker(s.simInterval)
	defer simTicker.Stop()
	bcTicker := time.NewTicker(s.broadcastInterval)
	defer bcTicker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.BroadcastAll()
			return
		case now := <-simTicker.C:
			dt := ClampDelta(now.Sub(last), s.maxDelta)
			last = now
			s.StepAll(dt)
		case <-bcTicker.C:
			s.BroadcastAll()
		}
	}
}

// Done 在 Run 返回后关闭
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// ClampDelta 转为秒并裁剪到 [0, max]
func ClampDelta(d, max time.Duration) float64 {
	if d < 0 {
		d = 0
	}
	if d > max {
		d = max
	}
	return d.Seconds()
}

// StepAll 推进所有房间一帧
func (s *Scheduler) StepAll(dt float64) {
	for _, r := range s.registry.Rooms() {
		s.stepRoom(r, dt)
	}
}

// BroadcastAll 所有房间广播快照
func (s *Scheduler) BroadcastAll() {
	for _, r := range s.registry.Rooms() {
		s.guard(r, "broadcast", r.Broadcast)
	}
}

func (s *Scheduler) stepRoom(r *Room, dt float64) {
	start := time.Now()
	s.guard(r, "tick", func() { r.Step(dt) })
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// guard 单个房间的异常只记录，不影响其他房间与调度循环
func (s *Scheduler) guard(r *Room, phase string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.IncTickPanic()
			Log.Errorw("room panic recovered", "room", r.ID, "phase", phase, "panic", rec, "stack", string(debug.Stack()))
		}
	}()
	fn()
}
