package lifecycle

import "time"

// CancelFunc stops a scheduled task. Calling it after the task ran, or twice, is harmless.
type CancelFunc func()

// Scheduler runs fn once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) CancelFunc
}

type timerScheduler struct{}

// TimerScheduler schedules on the runtime timer.
func TimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(delay time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}
