package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"focus-tracker/internal/auth"
	"focus-tracker/internal/client"
	focushttp "focus-tracker/internal/http"
	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/service"
	"focus-tracker/internal/stats"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	service.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "focus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := sqlite.NewUserRepository(db)
	tasks := sqlite.NewTaskRepository(db)
	trackers := sqlite.NewTrackerRepository(db)
	exports := service.NewExportService(users, tasks, trackers, nil, service.ExportConfig{}, logger)

	handler := focushttp.NewHandler(focushttp.Services{
		Auth:     service.NewAuthService(users, auth.NewCodec("cli-secret", time.Hour)),
		Users:    service.NewUserService(users, service.UserHooks{Renamed: exports.Relocate, Deleted: exports.Purge}),
		Tasks:    service.NewTaskService(tasks),
		Trackers: service.NewTrackerService(trackers, tasks),
		Stats:    service.NewStatsService(trackers, nil),
		Exports:  exports,
	}, focushttp.Options{Logger: logger, AuthPerMinute: 1000, AuthBurst: 1000})

	router := gin.New()
	handler.RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// stepClock moves forward by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

type harness struct {
	t       *testing.T
	srv     *httptest.Server
	session string
	clock   *stepClock
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:       t,
		srv:     newAPIServer(t),
		session: filepath.Join(t.TempDir(), "focusctl", "session.json"),
		clock:   &stepClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), step: time.Minute},
	}
}

func (h *harness) run(input string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	app := &App{
		In:          strings.NewReader(input),
		Out:         &out,
		Err:         &out,
		SessionPath: h.session,
		Now:         h.clock.Now,
		Tick:        5 * time.Millisecond,
	}
	cmd := app.Command()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) login(username string) {
	h.t.Helper()
	_, err := h.run("secret1\n", "register", username, username+"@example.com", "--server", h.srv.URL)
	require.NoError(h.t, err)
}

func (h *harness) apiClient() *client.Client {
	h.t.Helper()
	s, err := LoadSession(h.session)
	require.NoError(h.t, err)
	return client.New(s.Server, s.Token)
}

func TestSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := LoadSession(path)
	require.NoError(t, err)
	require.Empty(t, s.Token)

	require.NoError(t, SaveSession(path, &Session{Server: "http://example.test", Token: "tok", Username: "alice"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s, err = LoadSession(path)
	require.NoError(t, err)
	require.Equal(t, "tok", s.Token)
	require.Equal(t, "alice", s.Username)

	require.NoError(t, ClearSession(path))
	require.NoError(t, ClearSession(path))
	s, err = LoadSession(path)
	require.NoError(t, err)
	require.Empty(t, s.Server)
}

func TestAuthCommands(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "whoami")
	require.ErrorContains(t, err, "not logged in")

	out, err := h.run("secret1\n", "register", "alice", "alice@example.com", "--server", h.srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, "Registered as alice")

	s, err := LoadSession(h.session)
	require.NoError(t, err)
	require.Equal(t, h.srv.URL, s.Server)
	require.NotEmpty(t, s.Token)

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "alice <alice@example.com>")

	out, err = h.run("", "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")

	_, err = h.run("wrong-pass\n", "login", "alice", "--server", h.srv.URL)
	require.ErrorContains(t, err, "Invalid username or password")

	out, err = h.run("alice\nsecret1\n", "login", "--server", h.srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as alice")
}

func TestTaskCommands(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	out, err := h.run("", "tasks")
	require.NoError(t, err)
	require.Contains(t, out, "No tasks yet")

	out, err = h.run("", "tasks", "add", "Write", "report", "--due", "2025-12-15")
	require.NoError(t, err)
	require.Contains(t, out, "Created task Write report")

	tasks, err := h.apiClient().ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	out, err = h.run("", "tasks")
	require.NoError(t, err)
	require.Contains(t, out, "Write report")
	require.Contains(t, out, "pending")

	_, err = h.run("", "tasks", "done", id)
	require.NoError(t, err)
	tasks, err = h.apiClient().ListTasks(context.Background())
	require.NoError(t, err)
	require.True(t, tasks[0].Completed)

	_, err = h.run("", "tasks", "rm", "missing-id")
	require.ErrorContains(t, err, "Task not found")

	out, err = h.run("", "tasks", "rm", id)
	require.NoError(t, err)
	require.Contains(t, out, "Deleted Write report")
}

func TestTrackStopwatch(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	_, err := h.run("", "tasks", "add", "Deep work")
	require.NoError(t, err)
	tasks, err := h.apiClient().ListTasks(context.Background())
	require.NoError(t, err)

	out, err := h.run("q\n", "track", "--task", tasks[0].ID)
	require.NoError(t, err)
	require.Contains(t, out, "Stopwatch started")
	require.Contains(t, out, "Saved stopwatch 1m 00s")

	trackers, err := h.apiClient().ListTrackers(context.Background())
	require.NoError(t, err)
	require.Len(t, trackers, 1)
	require.Equal(t, "stopwatch", trackers[0].Type)
	require.Equal(t, int64(60), trackers[0].Duration)
	require.NotNil(t, trackers[0].TaskID)
	require.Equal(t, tasks[0].ID, *trackers[0].TaskID)

	out, err = h.run("", "trackers")
	require.NoError(t, err)
	require.Contains(t, out, trackers[0].ID)
}

func TestTrackCountdownEndsItself(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	out, err := h.run("", "track", "--minutes", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Countdown started: 01:00")
	require.Contains(t, out, "time is up")

	trackers, err := h.apiClient().ListTrackers(context.Background())
	require.NoError(t, err)
	require.Len(t, trackers, 1)
	require.Equal(t, "timer", trackers[0].Type)
	require.Equal(t, int64(60), trackers[0].Duration)
	require.Nil(t, trackers[0].TaskID)
}

func TestTrackRejectsUnknownTask(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	_, err := h.run("q\n", "track", "--task", "nope")
	require.ErrorContains(t, err, "session of 1m 00s not saved")
}

func TestStatsAndExport(t *testing.T) {
	h := newHarness(t)
	h.login("alice")

	_, err := h.run("q\n", "track")
	require.NoError(t, err)

	out, err := h.run("", "stats", "--tz", "UTC")
	require.NoError(t, err)
	require.Contains(t, out, "Focus summary")
	require.Contains(t, out, "1 current")
	require.Contains(t, out, "less")

	_, err = h.run("", "stats", "--tz", "Mars/Olympus")
	require.ErrorContains(t, err, "Validation failed")

	file := filepath.Join(t.TempDir(), "export.json")
	out, err = h.run("", "export", "-o", file)
	require.NoError(t, err)
	require.Contains(t, out, "Export written to")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"exportedAt"`)
	require.Contains(t, string(data), `"stopwatch"`)

	_, err = h.run("", "export", "--archive")
	require.ErrorContains(t, err, "Export storage is not configured")
}

func TestRenderHeatmap(t *testing.T) {
	// 2025-01-01 is a Wednesday
	cells := []stats.Cell{
		{Date: "2025-01-01", Level: 4},
		{Date: "2025-01-02", Level: 0},
		{Date: "2025-01-03", Level: 1},
		{Date: "2025-01-04", Level: 2},
		{Date: "2025-01-05", Level: 3},
	}

	lines := strings.Split(renderHeatmap(cells, false), "\n")
	require.Equal(t, "     ▓", lines[0])
	require.Equal(t, "Wed █ ", lines[3])
	require.Equal(t, "    · ", lines[4])
	require.Equal(t, "Fri ░ ", lines[5])
	require.Equal(t, "    ▒ ", lines[6])
	require.Equal(t, "    less ·░▒▓█ more", lines[7])

	require.Empty(t, renderHeatmap(nil, false))
}

func TestFormatSeconds(t *testing.T) {
	require.Equal(t, "42s", formatSeconds(42))
	require.Equal(t, "25m 00s", formatSeconds(1500))
	require.Equal(t, "1h 05m", formatSeconds(3900))
}
