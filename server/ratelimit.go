package server

import "time"

// RateLimiter 每连接的固定窗口计数器。
// 窗口到期即整体清零，是滑动窗口的近似：跨越窗口边界时短时间内最多可放行 2*max 条。
// 只在该连接的读协程中调用，不加锁。
type RateLimiter struct {
	window  time.Duration
	max     int
	count   int
	resetAt time.Time
	now     func() time.Time
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{window: window, max: max, now: time.Now}
}

// Allow 记一次消息，超出上限返回 false（调用方静默丢弃，不回错误）
func (l *RateLimiter) Allow() bool {
	now := l.now()
	if !now.Before(l.resetAt) {
		l.count = 0
		l.resetAt = now.Add(l.window)
	}
	l.count++
	return l.count <= l.max
}
