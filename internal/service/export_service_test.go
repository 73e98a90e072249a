package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"focus-tracker/internal/api"
	"focus-tracker/internal/storage"
)

type memoryStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "s3://test/" + key, nil
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []storage.ObjectInfo{}
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) Copy(_ context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[src]
	if !ok {
		return errors.New("no such key " + src)
	}
	m.objects[dst] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStore) DeletePrefix(_ context.Context, prefix string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
		}
	}
	return nil
}

func (m *memoryStore) PresignGet(_ context.Context, key string, expires time.Duration) (string, error) {
	return "https://example.test/" + key + "?expires=" + expires.String(), nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestExportSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")
	f.register(t, "bob")

	task, err := f.taskSvc.Create(ctx, "alice", CreateTaskInput{Name: "Write report"})
	require.NoError(t, err)
	_, err = f.trackerSvc.Create(ctx, "alice", CreateTrackerInput{Type: "timer", Duration: 3600, TaskID: &task.ID})
	require.NoError(t, err)
	_, err = f.taskSvc.Create(ctx, "bob", CreateTaskInput{Name: "Not alice's"})
	require.NoError(t, err)

	exports := NewExportService(f.users, f.tasks, f.trackers, nil, ExportConfig{}, quietLogger())
	snapshot, err := exports.Snapshot(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", snapshot.User.Username)
	require.Len(t, snapshot.Tasks, 1)
	require.Len(t, snapshot.Trackers, 1)
	require.Equal(t, int64(3600), snapshot.Summary.TotalSeconds)
	require.Equal(t, 1, snapshot.Summary.CurrentStreak)

	_, err = exports.Archive(ctx, "alice")
	require.ErrorIs(t, err, storage.ErrDisabled)
	_, err = exports.Archives(ctx, "alice")
	require.ErrorIs(t, err, storage.ErrDisabled)
}

func TestExportArchiveAndPurge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")
	f.register(t, "bob")

	store := newMemoryStore()
	exports := NewExportService(f.users, f.tasks, f.trackers, store, ExportConfig{KeyPrefix: "/exports/"}, quietLogger())

	archive, err := exports.Archive(ctx, "alice")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(archive.Key, "exports/alice/"))
	require.True(t, strings.HasSuffix(archive.Key, ".json"))
	require.Equal(t, "s3://test/"+archive.Key, archive.Location)
	require.Contains(t, archive.URL, archive.Key)

	var stored api.Export
	require.NoError(t, json.Unmarshal(store.objects[archive.Key], &stored))
	require.Equal(t, "alice", stored.User.Username)

	_, err = exports.Archive(ctx, "bob")
	require.NoError(t, err)

	list, err := exports.Archives(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)

	// deleting the account drops its archives through the hook
	users := NewUserService(f.users, UserHooks{Renamed: exports.Relocate, Deleted: exports.Purge})
	_, err = users.Delete(ctx, "alice", "alice")
	require.NoError(t, err)

	list, err = exports.Archives(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, list)
	list, err = exports.Archives(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestExportArchivesFollowRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	store := newMemoryStore()
	exports := NewExportService(f.users, f.tasks, f.trackers, store, ExportConfig{KeyPrefix: "exports"}, quietLogger())
	users := NewUserService(f.users, UserHooks{Renamed: exports.Relocate, Deleted: exports.Purge})

	archive, err := exports.Archive(ctx, "alice")
	require.NoError(t, err)

	_, err = users.Update(ctx, "alice", "alice", UpdateUserInput{Username: ptr("alice2"), Email: ptr("alice2@example.com")})
	require.NoError(t, err)

	list, err := exports.Archives(ctx, "alice2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "exports/alice2/"+strings.TrimPrefix(archive.Key, "exports/alice/"), list[0].Key)

	// a newcomer taking the freed name starts with nothing
	f.register(t, "alice")
	list, err = exports.Archives(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestExportPurgeFailureDoesNotBlockDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	store := newMemoryStore()
	store.deleteErr = errors.New("bucket unavailable")
	exports := NewExportService(f.users, f.tasks, f.trackers, store, ExportConfig{}, quietLogger())

	users := NewUserService(f.users, UserHooks{Renamed: exports.Relocate, Deleted: exports.Purge})
	_, err := users.Delete(ctx, "alice", "alice")
	require.NoError(t, err)

	_, err = users.Get(ctx, "alice")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStatsService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	now := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{now.AddDate(0, 0, -1), now.Add(-time.Hour)} {
		_, err := f.trackerSvc.Create(ctx, "alice", CreateTrackerInput{Type: "timer", Duration: 1800, Date: &at})
		require.NoError(t, err)
	}

	svc := NewStatsService(f.trackers, func() time.Time { return now })
	summary, err := svc.Summary(ctx, "alice", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 2, summary.CurrentStreak)
	require.Equal(t, 1.0, summary.TotalHours)

	cells, from, to, err := svc.Heatmap(ctx, "alice", time.Time{}, time.Time{}, time.UTC)
	require.NoError(t, err)
	require.Equal(t, now, to)
	require.Equal(t, "2024-03-11", from.Format("2006-01-02"))
	require.Equal(t, "2025-03-10", cells[len(cells)-1].Date)
	require.Equal(t, 1, cells[len(cells)-1].Count)

	_, _, _, err = svc.Heatmap(ctx, "alice", now, now.AddDate(0, 0, -1), time.UTC)
	requireFields(t, err, "from")

	_, _, _, err = svc.Heatmap(ctx, "alice", now.AddDate(-3, 0, 0), now, time.UTC)
	requireFields(t, err, "to")
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)

	loc, err = LoadLocation("Europe/Berlin", time.UTC)
	require.NoError(t, err)
	require.Equal(t, "Europe/Berlin", loc.String())

	_, err = LoadLocation("Mars/Olympus", time.UTC)
	requireFields(t, err, "tz")
}
