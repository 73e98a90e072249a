package seed

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"focus-tracker/internal/auth"
	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/service"
)

func TestRunIsRepeatable(t *testing.T) {
	service.PasswordCost = bcrypt.MinCost

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for range 2 {
		res, err := Run(ctx, db, now, logger)
		require.NoError(t, err)
		require.Equal(t, Result{Users: 3, Tasks: 5, Trackers: 6}, res)
	}

	users := sqlite.NewUserRepository(db)
	authSvc := service.NewAuthService(users, auth.NewCodec("seed-test", time.Hour))
	_, err = authSvc.Login(ctx, service.LoginInput{Username: "user002", Password: "password456"})
	require.NoError(t, err)

	stats := service.NewStatsService(sqlite.NewTrackerRepository(db), func() time.Time { return now })
	summary, err := stats.Summary(ctx, "user001", time.UTC)
	require.NoError(t, err)
	require.Equal(t, int64(600*60), summary.TotalSeconds)
	require.Equal(t, 2, summary.CurrentStreak)
}
