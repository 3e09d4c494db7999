package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	panic bool
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.runs.Add(1)
	if j.panic {
		panic("boom")
	}
	return j.err
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	t.Run("empty schedule disables job", func(t *testing.T) {
		job := &countingJob{name: "disabled"}
		require.NoError(t, s.AddJob("", job))
		assert.False(t, s.Registered("disabled"))
	})

	t.Run("invalid schedule", func(t *testing.T) {
		err := s.AddJob("every tuesday", &countingJob{name: "bad"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad")
		assert.False(t, s.Registered("bad"))
	})

	t.Run("duplicate name", func(t *testing.T) {
		require.NoError(t, s.AddJob("@hourly", &countingJob{name: "hourly"}))
		assert.True(t, s.Registered("hourly"))
		assert.Error(t, s.AddJob("@daily", &countingJob{name: "hourly"}))
	})
}

func TestScheduler_RunsJobsOnSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("nope")}
	panicking := &countingJob{name: "panicking", panic: true}
	require.NoError(t, s.AddJob("* * * * * *", ok))
	require.NoError(t, s.AddJob("* * * * * *", failing))
	require.NoError(t, s.AddJob("* * * * * *", panicking))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return ok.runs.Load() >= 2 && failing.runs.Load() >= 2 && panicking.runs.Load() >= 2
	}, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "manual", err: errors.New("failed")}

	err := s.RunNow(job)
	assert.EqualError(t, err, "failed")
	assert.Equal(t, int32(1), job.runs.Load())
}
