package task

import (
	"context"
	"sync"
	"time"
)

const defaultSchedulerInterval = time.Minute

// JobFunc is the work executed on every tick.
type JobFunc func(context.Context)

// Scheduler runs a job on a fixed interval until stopped. The interval can be
// changed while running; the next tick is measured from the change.
type Scheduler struct {
	job          JobFunc
	reschedule   chan struct{}
	controlMutex sync.Mutex
	interval     time.Duration
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewScheduler(interval time.Duration, job JobFunc) *Scheduler {
	if interval <= 0 {
		interval = defaultSchedulerInterval
	}
	return &Scheduler{
		interval:   interval,
		job:        job,
		reschedule: make(chan struct{}, 1),
	}
}

func (scheduler *Scheduler) Start(ctx context.Context) {
	if scheduler == nil || scheduler.job == nil {
		return
	}
	scheduler.controlMutex.Lock()
	if scheduler.cancel != nil {
		scheduler.controlMutex.Unlock()
		return
	}
	runtimeCtx, cancel := context.WithCancel(ctx)
	scheduler.cancel = cancel
	done := make(chan struct{})
	scheduler.done = done
	scheduler.controlMutex.Unlock()

	go scheduler.loop(runtimeCtx, done)
}

// Reschedule replaces the interval. Non-positive intervals are ignored.
func (scheduler *Scheduler) Reschedule(interval time.Duration) {
	if scheduler == nil || interval <= 0 {
		return
	}
	scheduler.controlMutex.Lock()
	scheduler.interval = interval
	scheduler.controlMutex.Unlock()
	select {
	case scheduler.reschedule <- struct{}{}:
	default:
	}
}

// Interval returns the current interval.
func (scheduler *Scheduler) Interval() time.Duration {
	if scheduler == nil {
		return 0
	}
	scheduler.controlMutex.Lock()
	defer scheduler.controlMutex.Unlock()
	return scheduler.interval
}

func (scheduler *Scheduler) Stop() {
	if scheduler == nil {
		return
	}
	scheduler.controlMutex.Lock()
	cancel := scheduler.cancel
	done := scheduler.done
	scheduler.cancel = nil
	scheduler.done = nil
	scheduler.controlMutex.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (scheduler *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(scheduler.Interval())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-scheduler.reschedule:
		case <-timer.C:
			scheduler.run(ctx)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(scheduler.Interval())
	}
}

func (scheduler *Scheduler) run(ctx context.Context) {
	if scheduler.job == nil {
		return
	}
	scheduler.job(ctx)
}
