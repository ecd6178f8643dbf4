// Package coalesce 合并短时间内的连续请求：只有静默窗口结束时最新的值会被处理。
package coalesce

import (
	"sync"
	"time"
)

// Coalescer 合并队列
type Coalescer[T any] struct {
	mu      sync.Mutex
	runMu   sync.Mutex // 保证 fn 串行执行
	window  time.Duration
	fn      func(T)
	timer   *time.Timer
	gen     uint64
	pending T
	has     bool
	closed  bool
}

// New 创建合并队列，window 为静默窗口
func New[T any](window time.Duration, fn func(T)) *Coalescer[T] {
	return &Coalescer[T]{window: window, fn: fn}
}

// Submit 提交新值，覆盖尚未处理的旧值并重新计时
func (c *Coalescer[T]) Submit(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.pending = v
	c.has = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
	}
	gen := c.gen
	c.timer = time.AfterFunc(c.window, func() { c.fire(gen) })
}

// Pending 是否有待处理的值
func (c *Coalescer[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.has
}

// Flush 立即处理待处理的值（如果有）
func (c *Coalescer[T]) Flush() {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if v, ok := c.take(0); ok {
		c.fn(v)
	}
}

// Close 处理剩余的值并停止接收新值
func (c *Coalescer[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.Flush()
}

func (c *Coalescer[T]) fire(gen uint64) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if v, ok := c.take(gen); ok {
		c.fn(v)
	}
}

// take 取出待处理值；gen 非 0 时只有最新一轮计时器才能取
func (c *Coalescer[T]) take(gen uint64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if !c.has || (gen != 0 && gen != c.gen) {
		return zero, false
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	v := c.pending
	c.pending = zero
	c.has = false
	return v, true
}
