// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/internal/backup"
	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/database/dbtest"
)

type countingCreator struct {
	calls chan string
}

func (creator *countingCreator) Create(_ context.Context, notes string, scheduled bool) (*backup.Backup, error) {
	creator.calls <- notes
	return &backup.Backup{Notes: notes, Scheduled: scheduled}, nil
}

func newScheduler(t *testing.T) *backup.Scheduler {
	t.Helper()
	scheduler := backup.NewScheduler(&countingCreator{calls: make(chan string, 1)}, dbtest.Logger())
	scheduler.Start()
	t.Cleanup(scheduler.Stop)
	return scheduler
}

func TestScheduler_Weekly(t *testing.T) {
	scheduler := newScheduler(t)

	schedule, err := scheduler.SetWeekly(0, 9, 30)
	require.NoError(t, err)
	assert.Equal(t, backup.KindWeekly, schedule.Kind)
	assert.Equal(t, time.Monday, schedule.Next.Weekday())
	assert.Equal(t, 9, schedule.Next.Hour())
	assert.Equal(t, 30, schedule.Next.Minute())

	sunday, err := scheduler.SetWeekly(6, 23, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, sunday.Next.Weekday())

	current := scheduler.Current()
	require.NotNil(t, current)
	require.NotNil(t, current.Day)
	assert.Equal(t, 6, *current.Day)
}

func TestScheduler_DailyReplacesAndClears(t *testing.T) {
	scheduler := newScheduler(t)
	assert.Nil(t, scheduler.Current())

	_, err := scheduler.SetWeekly(2, 1, 0)
	require.NoError(t, err)

	daily, err := scheduler.SetDaily(4, 15)
	require.NoError(t, err)
	assert.Equal(t, backup.KindDaily, daily.Kind)
	assert.Nil(t, daily.Day)
	assert.Equal(t, 4, daily.Next.Hour())
	assert.True(t, daily.Next.After(time.Now()))
	assert.Less(t, time.Until(daily.Next), 25*time.Hour)

	assert.Equal(t, backup.KindDaily, scheduler.Current().Kind)

	scheduler.Clear()
	assert.Nil(t, scheduler.Current())
}

func TestScheduler_RejectsOutOfRange(t *testing.T) {
	scheduler := newScheduler(t)

	_, err := scheduler.SetDaily(24, 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = scheduler.SetWeekly(7, 1, 1)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	assert.Nil(t, scheduler.Current())
}
