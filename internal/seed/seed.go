// Package seed fills an empty database with demo accounts.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"focus-tracker/internal/repository/sqlite"
	"focus-tracker/internal/service"
)

type demoUser struct {
	username string
	password string
}

type demoTask struct {
	owner string
	name  string
	due   string
}

type demoTracker struct {
	owner   string
	kind    string
	minutes int64
	daysAgo int
}

var (
	users = []demoUser{
		{"user001", "password123"},
		{"user002", "password456"},
		{"user003", "password789"},
	}
	tasks = []demoTask{
		{"user001", "Complete project proposal", "2025-12-15"},
		{"user001", "Review code changes", "2025-12-10"},
		{"user002", "Update documentation", "2025-12-20"},
		{"user002", "Bug fixing and testing", "2025-12-12"},
		{"user003", "Deploy to production", "2025-12-25"},
	}
	trackers = []demoTracker{
		{"user001", "development", 480, 1},
		{"user001", "testing", 120, 0},
		{"user002", "documentation", 90, 2},
		{"user002", "meeting", 60, 0},
		{"user003", "review", 45, 3},
		{"user003", "deployment", 30, 1},
	}
)

// Result counts what was created.
type Result struct {
	Users    int
	Tasks    int
	Trackers int
}

// Run wipes db and seeds the demo data through the regular services, so
// passwords are hashed and inputs validated like any API call.
func Run(ctx context.Context, db *sql.DB, now time.Time, logger *logrus.Logger) (Result, error) {
	var res Result

	logger.Info("clearing existing data")
	if err := sqlite.Reset(ctx, db); err != nil {
		return res, err
	}

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	userSvc := service.NewUserService(userRepo, service.UserHooks{})
	taskSvc := service.NewTaskService(taskRepo)
	trackerSvc := service.NewTrackerService(sqlite.NewTrackerRepository(db), taskRepo)

	for _, u := range users {
		if _, err := userSvc.Create(ctx, service.CreateUserInput{
			Username: u.username,
			Email:    u.username + "@example.com",
			Password: u.password,
		}); err != nil {
			return res, fmt.Errorf("seed user %s: %w", u.username, err)
		}
		res.Users++
	}
	logger.Infof("created %d users", res.Users)

	for _, t := range tasks {
		due, err := time.Parse(time.DateOnly, t.due)
		if err != nil {
			return res, fmt.Errorf("seed task %q: %w", t.name, err)
		}
		if _, err := taskSvc.Create(ctx, t.owner, service.CreateTaskInput{
			Name:    t.name,
			DueDate: &due,
		}); err != nil {
			return res, fmt.Errorf("seed task %q: %w", t.name, err)
		}
		res.Tasks++
	}
	logger.Infof("created %d tasks", res.Tasks)

	for _, t := range trackers {
		date := now.AddDate(0, 0, -t.daysAgo)
		if _, err := trackerSvc.Create(ctx, t.owner, service.CreateTrackerInput{
			Type:     t.kind,
			Duration: t.minutes * 60,
			Date:     &date,
		}); err != nil {
			return res, fmt.Errorf("seed tracker %s: %w", t.kind, err)
		}
		res.Trackers++
	}
	logger.Infof("created %d trackers", res.Trackers)

	return res, nil
}
