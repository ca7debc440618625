package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yuqie6/TrivialFit/internal/eventbus"
)

// RestTimerStatus 休息倒计时状态
type RestTimerStatus struct {
	Running     bool          `json:"running"`
	Total       time.Duration `json:"total"`
	Remaining   time.Duration `json:"remaining"`
	Display     string        `json:"display"`
	ProgressPct int           `json:"progress_pct"` // 剩余比例
}

// RestTimer 组间休息倒计时，每个 tick 通过事件总线推送
type RestTimer struct {
	mu   sync.Mutex
	hub  *eventbus.Hub
	tick time.Duration
	now  func() time.Time

	gen     int
	running bool
	total   time.Duration
	endsAt  time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRestTimer tick<=0 时每秒推送一次
func NewRestTimer(hub *eventbus.Hub, tick time.Duration) *RestTimer {
	if tick <= 0 {
		tick = time.Second
	}
	return &RestTimer{hub: hub, tick: tick, now: time.Now}
}

// Start 重新开始倒计时；返回的通道在结束或被跳过时关闭
func (t *RestTimer) Start(ctx context.Context, d time.Duration) (<-chan struct{}, error) {
	if d <= 0 {
		return nil, fmt.Errorf("休息时长必须大于 0: %w", ErrInvalidInput)
	}

	t.mu.Lock()
	t.stopLocked()
	t.gen++
	gen := t.gen
	runCtx, cancel := context.WithCancel(ctx)
	t.running = true
	t.total = d
	t.endsAt = t.now().Add(d)
	t.cancel = cancel
	done := make(chan struct{})
	t.done = done
	t.mu.Unlock()

	t.publish(eventbus.TypeRestTimerTick, t.Status())
	go t.run(runCtx, gen, done)
	return done, nil
}

// Skip 提前结束；没有运行中的计时返回 false
func (t *RestTimer) Skip() bool {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return false
	}
	t.stopLocked()
	t.mu.Unlock()
	t.publish(eventbus.TypeRestTimerSkipped, t.Status())
	return true
}

// Status 当前状态
func (t *RestTimer) Status() RestTimerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

func (t *RestTimer) statusLocked() RestTimerStatus {
	st := RestTimerStatus{Running: t.running, Total: t.total}
	if t.running {
		st.Remaining = t.endsAt.Sub(t.now())
		if st.Remaining < 0 {
			st.Remaining = 0
		}
	}
	st.Display = FormatDuration(st.Remaining)
	if t.total > 0 {
		st.ProgressPct = int(st.Remaining * 100 / t.total)
	}
	return st
}

func (t *RestTimer) run(ctx context.Context, gen int, done chan struct{}) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.mu.Lock()
			if t.gen == gen && t.running {
				t.stopLocked()
			}
			t.mu.Unlock()
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.gen != gen || !t.running {
				t.mu.Unlock()
				return
			}
			st := t.statusLocked()
			finished := st.Remaining <= 0
			if finished {
				t.running = false
				t.cancel = nil
				t.done = nil
				close(done)
			}
			t.mu.Unlock()

			if finished {
				t.publish(eventbus.TypeRestTimerDone, st)
				return
			}
			t.publish(eventbus.TypeRestTimerTick, st)
		}
	}
}

func (t *RestTimer) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
	t.running = false
}

func (t *RestTimer) publish(typ string, st RestTimerStatus) {
	t.hub.Publish(eventbus.Event{Type: typ, Data: map[string]any{
		"remaining_ms": st.Remaining.Milliseconds(),
		"total_ms":     st.Total.Milliseconds(),
		"display":      st.Display,
		"progress_pct": st.ProgressPct,
	}})
}
