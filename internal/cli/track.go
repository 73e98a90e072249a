package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"focus-tracker/internal/api"
	"focus-tracker/internal/timer"
)

func (a *App) trackCmd() *cobra.Command {
	var (
		minutes int
		taskID  string
	)

	cmd := &cobra.Command{
		Use:     "track",
		Aliases: []string{"start"},
		Short:   "Run a focus session and save it as a tracker",
		Long: `Run a stopwatch, or a countdown when --minutes is given, and record the
elapsed time as a tracker when the session ends.

Controls (type and press Enter):
  p      pause or resume
  q      end the session and save it
Ctrl+C ends and saves as well. A countdown ends by itself at zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes < 0 {
				return fmt.Errorf("--minutes must be positive")
			}
			c, err := a.client()
			if err != nil {
				return err
			}

			var res timer.Result
			opts := []timer.Option{
				timer.WithClock(a.Now),
				timer.OnEnd(func(r timer.Result) { res = r }),
			}

			var s *timer.Session
			if minutes > 0 {
				s = timer.NewCountdown(time.Duration(minutes)*time.Minute, opts...)
			} else {
				s = timer.NewStopwatch(opts...)
			}

			if err := a.runSession(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintln(a.Out)

			secs := res.Seconds()
			if secs <= 0 {
				a.warn("Session shorter than a second, nothing recorded")
				return nil
			}

			kind := res.Mode.TrackerType()
			req := api.TrackerRequest{Type: &kind, Duration: &secs}
			if taskID != "" {
				req.TaskID = api.Value(taskID)
			}
			tracker, err := c.CreateTracker(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("session of %s not saved: %w", formatSeconds(secs), err)
			}

			msg := fmt.Sprintf("Saved %s %s", kind, formatSeconds(tracker.Duration))
			if res.AutoEnded {
				msg += " (time is up)"
			}
			a.success(msg)
			return nil
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Count down from this many minutes instead of counting up")
	cmd.Flags().StringVarP(&taskID, "task", "t", "", "Task id to attach the session to")
	return cmd
}

// runSession starts s and blocks until it ends by itself, the user quits, or
// the process is interrupted.
func (a *App) runSession(parent context.Context, s *timer.Session) error {
	if err := s.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.Mode() == timer.Countdown {
		a.title("Countdown started: " + timer.FormatClock(s.Length()))
	} else {
		a.title("Stopwatch started")
	}
	a.muted("p + Enter to pause/resume, q + Enter to finish")

	go a.readControls(ctx, s, cancel)

	live := a.live()
	err := s.Run(ctx, a.Tick, func(s *timer.Session) {
		if live {
			fmt.Fprintf(a.Out, "\r%s  %-7s", a.style(styleBold, clockFor(s)), s.State())
		}
	})
	if err != nil && parent.Err() != nil {
		return parent.Err()
	}

	if s.State() != timer.Ended {
		if _, err := s.End(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) readControls(ctx context.Context, s *timer.Session, quit context.CancelFunc) {
	scanner := bufio.NewScanner(a.reader())
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "p", "pause", "r", "resume", "":
			if err := s.Toggle(); err == nil && !a.live() {
				fmt.Fprintf(a.Out, "%s %s\n", s.State(), clockFor(s))
			}
		case "q", "quit", "stop", "end":
			quit()
			return
		}
	}
}

func clockFor(s *timer.Session) string {
	if s.Mode() == timer.Countdown {
		return timer.FormatClock(s.Remaining())
	}
	return timer.FormatClock(s.Elapsed())
}
