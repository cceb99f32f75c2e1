package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testSchedulerInterval = 10 * time.Millisecond
	testSchedulerTimeout  = 2 * time.Second
)

func TestNewSchedulerDefaultsInterval(testingT *testing.T) {
	scheduler := NewScheduler(0, func(context.Context) {})
	require.Equal(testingT, time.Minute, scheduler.Interval())
}

func TestSchedulerRunsOnInterval(testingT *testing.T) {
	var runCount int64
	scheduler := NewScheduler(testSchedulerInterval, func(context.Context) {
		atomic.AddInt64(&runCount, 1)
	})
	runtimeContext, cancel := context.WithCancel(context.Background())
	testingT.Cleanup(cancel)

	scheduler.Start(runtimeContext)

	require.Eventually(testingT, func() bool {
		return atomic.LoadInt64(&runCount) > 0
	}, testSchedulerTimeout, testSchedulerInterval)

	scheduler.Stop()
	require.Nil(testingT, scheduler.cancel)
}

func TestSchedulerRescheduleShortensWait(testingT *testing.T) {
	var runCount int64
	scheduler := NewScheduler(time.Hour, func(context.Context) {
		atomic.AddInt64(&runCount, 1)
	})
	scheduler.Start(context.Background())
	testingT.Cleanup(scheduler.Stop)

	scheduler.Reschedule(testSchedulerInterval)
	require.Equal(testingT, testSchedulerInterval, scheduler.Interval())

	require.Eventually(testingT, func() bool {
		return atomic.LoadInt64(&runCount) >= 2
	}, testSchedulerTimeout, testSchedulerInterval)
}

func TestSchedulerIgnoresNonPositiveReschedule(testingT *testing.T) {
	scheduler := NewScheduler(time.Hour, func(context.Context) {})
	scheduler.Reschedule(0)
	require.Equal(testingT, time.Hour, scheduler.Interval())
}

func TestSchedulerHandlesNilReceiver(testingT *testing.T) {
	var scheduler *Scheduler
	scheduler.Start(context.Background())
	scheduler.Reschedule(time.Second)
	scheduler.Stop()
	require.Zero(testingT, scheduler.Interval())
}

func TestSchedulerSkipsStartWhenJobMissing(testingT *testing.T) {
	scheduler := NewScheduler(testSchedulerInterval, nil)
	scheduler.Start(context.Background())
	require.Nil(testingT, scheduler.cancel)
}

func TestSchedulerStartIsIdempotent(testingT *testing.T) {
	scheduler := NewScheduler(testSchedulerInterval, func(context.Context) {})
	scheduler.Start(context.Background())
	doneAfterStart := scheduler.done
	require.NotNil(testingT, scheduler.cancel)
	scheduler.Start(context.Background())
	require.Equal(testingT, doneAfterStart, scheduler.done)
	scheduler.Stop()
}
