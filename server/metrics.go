package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount      int64 // 模拟 Tick 次数
	Broadcasts     int64 // 快照广播次数
	InputsAccepted int64 // 被接受的输入数
	InputsRejected int64 // 引用无效等原因被拒绝的输入数
	RateLimited    int64 // 因限流被静默丢弃的消息数
	Malformed      int64 // 无法解析的帧
	QueueDropped   int64 // 发送队列满被挤掉的旧消息
	TickPanics     int64 // 被捕获的模拟异常
	TotalTickNs    int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncAccepted()     { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncRejected()     { atomic.AddInt64(&m.InputsRejected, 1) }
func (m *RoomMetrics) IncRateLimited()  { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncMalformed()    { atomic.AddInt64(&m.Malformed, 1) }
func (m *RoomMetrics) IncQueueDropped() { atomic.AddInt64(&m.QueueDropped, 1) }
func (m *RoomMetrics) IncTickPanic()    { atomic.AddInt64(&m.TickPanics, 1) }
func (m *RoomMetrics) IncBroadcast()    { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"broadcasts":      atomic.LoadInt64(&m.Broadcasts),
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"inputs_rejected": atomic.LoadInt64(&m.InputsRejected),
		"rate_limited":    atomic.LoadInt64(&m.RateLimited),
		"malformed":       atomic.LoadInt64(&m.Malformed),
		"queue_dropped":   atomic.LoadInt64(&m.QueueDropped),
		"tick_panics":     atomic.LoadInt64(&m.TickPanics),
		"avg_tick_ms":     avgMs,
	}
}
