package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/deckgen/internal/domain/model"
)

type fakeJobs struct {
	view *model.JobView
	err  error
}

func (f fakeJobs) Get(context.Context, string) (*model.JobView, error) { return f.view, f.err }

type fakeUsage struct {
	n       int64
	gotUser string
	gotDay  time.Time
}

func (f *fakeUsage) Count(_ context.Context, userID string, day time.Time) (int64, error) {
	f.gotUser, f.gotDay = userID, day
	return f.n, nil
}

type fakeDepth int64

func (f fakeDepth) Depth(context.Context) (int64, error) { return int64(f), nil }

type fakeDeleter struct{ err error }

func (f fakeDeleter) Delete(context.Context, string) error { return f.err }

func TestPrintUsageListsEveryCommand(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	for name := range commands() {
		assert.Contains(t, buf.String(), name)
	}
}

func TestSingleArg(t *testing.T) {
	id, err := singleArg("status", []string{"abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	_, err = singleArg("status", nil)
	require.ErrorIs(t, err, errUsage)

	_, err = singleArg("status", []string{"a", "b"})
	require.ErrorIs(t, err, errUsage)
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)

	opts, err = parseMigrateFlags([]string{"--timeout", "30s"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, opts.Timeout)

	_, err = parseMigrateFlags([]string{"--timeout", "0s"})
	require.ErrorIs(t, err, errUsage)
}

func TestParseUsageFlags(t *testing.T) {
	opts, err := parseUsageFlags([]string{"--date", "2026-03-14", "user-1"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", opts.UserID)

	day, err := opts.day(time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), day)

	_, err = parseUsageFlags([]string{"--date", "2026-03-14"})
	require.ErrorIs(t, err, errUsage)

	_, err = usageOptions{Date: "14/03/2026"}.day(time.Now())
	require.ErrorIs(t, err, errUsage)
}

func TestPrintStatusCompleted(t *testing.T) {
	var buf bytes.Buffer
	jobs := fakeJobs{view: &model.JobView{
		ID:     "p-1",
		Status: model.JobStatusCompleted,
		Result: &model.JobResult{
			Status:      model.JobStatusCompleted,
			DownloadURL: "https://storage.example/p-1.pptx",
			StorageKey:  "presentations/p-1.pptx",
			Topic:       "Renewable energy adoption",
			SlideCount:  10,
		},
	}}

	require.NoError(t, printStatus(context.Background(), &buf, jobs, "p-1"))
	out := buf.String()
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "https://storage.example/p-1.pptx")
	assert.Contains(t, out, "Renewable energy adoption")
}

func TestPrintStatusNotFound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printStatus(context.Background(), &buf, fakeJobs{err: model.ErrJobNotFound}, "ghost"))
	assert.Equal(t, "presentation ghost: not found\n", buf.String())
}

func TestPrintStatusStoreError(t *testing.T) {
	var buf bytes.Buffer
	err := printStatus(context.Background(), &buf, fakeJobs{err: errors.New("redis down")}, "p-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestPrintUsageCount(t *testing.T) {
	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	usage := &fakeUsage{n: 3}
	var buf bytes.Buffer

	require.NoError(t, printUsageCount(context.Background(), &usageReport{
		Out: &buf, Usage: usage, User: "u1", Day: day, Limit: 5,
	}))
	assert.Equal(t, "user u1 on 2026-03-14: 3/5 presentations, 2 remaining\n", buf.String())
	assert.Equal(t, "u1", usage.gotUser)
	assert.Equal(t, day, usage.gotDay)

	buf.Reset()
	usage.n = 9
	require.NoError(t, printUsageCount(context.Background(), &usageReport{
		Out: &buf, Usage: usage, User: "u1", Day: day, Limit: 5,
	}))
	assert.Contains(t, buf.String(), "0 remaining")

	buf.Reset()
	require.NoError(t, printUsageCount(context.Background(), &usageReport{
		Out: &buf, Usage: usage, User: "u1", Day: day,
	}))
	assert.Contains(t, buf.String(), "no daily limit")
}

func TestPrintQueueDepth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printQueueDepth(context.Background(), &buf, fakeDepth(7)))
	assert.Equal(t, "7\n", buf.String())
}

func TestDeletePresentation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, deletePresentation(context.Background(), &buf, fakeDeleter{}, "p-1"))
	assert.Equal(t, "presentation p-1 deleted\n", buf.String())

	err := deletePresentation(context.Background(), &buf, fakeDeleter{err: errors.New("boom")}, "p-1")
	require.Error(t, err)
}

func TestPrintApplied(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printApplied(&buf, []string{"0001_presentations"}))
	assert.Equal(t, "1 migrations applied\n  0001_presentations\n", buf.String())
}
