package task

import (
	"time"
)

type Runner interface {
	Run() error
}

// TickerTask runs a Runner periodically until stopped. The creative cache uses
// one to sweep expired entries.
type TickerTask struct {
	interval time.Duration
	runner   Runner
	done     chan struct{}
}

func NewTickerTask(interval time.Duration, runner Runner) *TickerTask {
	return &TickerTask{
		interval: interval,
		runner:   runner,
		done:     make(chan struct{}),
	}
}

// Start schedules the task to run periodically if a positive interval has been
// specified.
func (t *TickerTask) Start() {
	if t.interval > 0 {
		go t.runRecurring()
	}
}

// Stop stops the periodic task but the task runner maintains state.
func (t *TickerTask) Stop() {
	close(t.done)
}

func (t *TickerTask) runRecurring() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.runner.Run()
		case <-t.done:
			return
		}
	}
}
