package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(tick time.Duration) *Scheduler {
	return New(tick, zap.NewNop())
}

func TestArm_FiresAtDueTimeAndLoopStops(t *testing.T) {
	s := newTestScheduler(10 * time.Millisecond)
	defer s.Stop()

	var fired atomic.Int32
	id := s.Arm(1, time.Now().Add(30*time.Millisecond), func() { fired.Add(1) })
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, s.Pending())
	assert.True(t, s.Running())

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !s.Running() }, time.Second, 5*time.Millisecond,
		"цикл должен завершиться, когда задач не осталось")
	assert.Equal(t, 0, s.Pending())
}

func TestArm_ReplacesOnlySameChat(t *testing.T) {
	s := newTestScheduler(time.Hour)
	defer s.Stop()

	base := time.Now().Add(time.Hour)
	var a1, a2, b atomic.Int32
	s.Arm(1, base, func() { a1.Add(1) })
	s.Arm(2, base.Add(time.Minute), func() { b.Add(1) })
	s.Arm(1, base.Add(2*time.Minute), func() { a2.Add(1) })

	assert.Equal(t, 2, s.Pending())
	next, ok := s.Next(1)
	require.True(t, ok)
	assert.True(t, next.Equal(base.Add(2*time.Minute)))

	s.now = func() time.Time { return base.Add(time.Hour) }
	assert.Equal(t, 2, s.Tick())
	assert.EqualValues(t, 0, a1.Load(), "заменённая задача не выполняется")
	assert.EqualValues(t, 1, a2.Load())
	assert.EqualValues(t, 1, b.Load())
}

func TestTick_RunsOnlyDueJobsInOrder(t *testing.T) {
	s := newTestScheduler(time.Hour)
	defer s.Stop()

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var order []int64
	s.Arm(3, start.Add(3*time.Minute), func() { order = append(order, 3) })
	s.Arm(1, start.Add(1*time.Minute), func() { order = append(order, 1) })
	s.Arm(2, start.Add(2*time.Minute), func() { order = append(order, 2) })

	s.now = func() time.Time { return start.Add(2 * time.Minute) }
	assert.Equal(t, 2, s.Tick())
	assert.Equal(t, []int64{1, 2}, order)
	assert.Equal(t, 1, s.Pending())

	_, ok := s.Next(1)
	assert.False(t, ok)
}

func TestCancel(t *testing.T) {
	s := newTestScheduler(time.Hour)
	defer s.Stop()

	assert.False(t, s.Cancel(1), "нечего снимать")

	var fired atomic.Int32
	s.Arm(1, time.Now(), func() { fired.Add(1) })
	s.Arm(2, time.Now(), func() { fired.Add(1) })
	assert.True(t, s.Cancel(1))
	assert.False(t, s.Cancel(1))
	assert.Equal(t, 1, s.Pending())

	s.CancelAll()
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0, s.Tick())
	assert.EqualValues(t, 0, fired.Load())
}

func TestTick_JobCanRearm(t *testing.T) {
	s := newTestScheduler(time.Hour)
	defer s.Stop()

	now := time.Now()
	s.now = func() time.Time { return now }
	s.Arm(1, now, func() {
		s.Arm(1, now.Add(time.Minute), func() {})
	})

	assert.Equal(t, 1, s.Tick())
	next, ok := s.Next(1)
	require.True(t, ok)
	assert.True(t, next.Equal(now.Add(time.Minute)))
}

func TestExec_RecoversPanic(t *testing.T) {
	s := newTestScheduler(time.Hour)
	defer s.Stop()

	var after atomic.Int32
	now := time.Now()
	s.now = func() time.Time { return now.Add(time.Second) }
	s.Arm(1, now, func() { panic("boom") })
	s.Arm(2, now, func() { after.Add(1) })

	assert.NotPanics(t, func() { s.Tick() })
	assert.EqualValues(t, 1, after.Load())
}

func TestStop_DropsJobsAndRejectsNew(t *testing.T) {
	s := newTestScheduler(5 * time.Millisecond)

	var fired atomic.Int32
	s.Arm(1, time.Now().Add(time.Hour), func() { fired.Add(1) })
	s.Stop()
	s.Stop()

	assert.Equal(t, 0, s.Pending())
	assert.False(t, s.Running())
	assert.Equal(t, uuid.Nil, s.Arm(1, time.Now(), func() { fired.Add(1) }))
	assert.EqualValues(t, 0, fired.Load())
}
