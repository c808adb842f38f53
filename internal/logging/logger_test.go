package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func withObservedBase(t *testing.T, level zap.AtomicLevel) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	SetBase(zap.New(core))
	t.Cleanup(func() { SetBase(nil) })
	return logs
}

func TestGetNamesLoggerByCategory(t *testing.T) {
	logs := withObservedBase(t, zap.NewAtomicLevelAt(zap.DebugLevel))

	Get(CategoryStorage).Info("stored %s", "item-1")
	Get(CategoryIndex).Warn("index %s corrupt", "raw_files")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "storage", entries[0].LoggerName)
	require.Equal(t, "stored item-1", entries[0].Message)
	require.Equal(t, "index", entries[1].LoggerName)
	require.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestGetReturnsSameLoggerPerCategory(t *testing.T) {
	withObservedBase(t, zap.NewAtomicLevelAt(zap.InfoLevel))

	require.Same(t, Get(CategoryFetch), Get(CategoryFetch))
}

func TestConvenienceFunctions(t *testing.T) {
	logs := withObservedBase(t, zap.NewAtomicLevelAt(zap.DebugLevel))

	Storage("op %d", 1)
	StorageDebug("op %d", 2)
	Boot("up")
	Fetch("url %s", "x")
	Index("rebuilt")
	IndexDebug("entry")

	require.Equal(t, 6, logs.Len())
}

func TestSetBaseNilFallsBackToNop(t *testing.T) {
	SetBase(nil)
	// Must not panic.
	Get(CategoryBoot).Info("silent")
}

func TestTimerStop(t *testing.T) {
	logs := withObservedBase(t, zap.NewAtomicLevelAt(zap.DebugLevel))

	timer := StartTimer(CategoryStorage, "op")
	elapsed := timer.Stop()
	require.GreaterOrEqual(t, elapsed, time.Duration(0))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zap.DebugLevel, entries[0].Level)
	require.Contains(t, entries[0].Message, "op completed in")
}

func TestTimerStopWithThreshold(t *testing.T) {
	logs := withObservedBase(t, zap.NewAtomicLevelAt(zap.DebugLevel))

	timer := StartTimer(CategoryFetch, "slow-op")
	time.Sleep(2 * time.Millisecond)
	timer.StopWithThreshold(time.Millisecond)

	fast := StartTimer(CategoryFetch, "fast-op")
	fast.StopWithThreshold(time.Minute)

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zap.WarnLevel, entries[0].Level)
	require.Contains(t, entries[0].Message, "slow-op took")
	require.Equal(t, zap.DebugLevel, entries[1].Level)
}
