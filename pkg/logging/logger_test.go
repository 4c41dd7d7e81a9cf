package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLineFormatter(t *testing.T) {
	f := &LineFormatter{SystemName: "api"}

	t.Run("uses system name and sorted fields", func(t *testing.T) {
		entry := &logrus.Entry{
			Logger:  logrus.New(),
			Time:    time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
			Level:   logrus.WarnLevel,
			Message: "slow query",
			Data:    logrus.Fields{"b": 2, "a": 1},
		}
		out, err := f.Format(entry)
		if err != nil {
			t.Fatalf("Format: %v", err)
		}
		got := string(out)
		want := "2025-03-01 10:30:00 WARNING [api] slow query a=1 b=2\n"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("component field replaces system name", func(t *testing.T) {
		entry := &logrus.Entry{
			Logger:  logrus.New(),
			Time:    time.Now(),
			Level:   logrus.InfoLevel,
			Message: "tick",
			Data:    logrus.Fields{"component": "reminders"},
		}
		out, err := f.Format(entry)
		if err != nil {
			t.Fatalf("Format: %v", err)
		}
		if !strings.Contains(string(out), "[reminders] tick") {
			t.Errorf("expected component prefix, got %q", out)
		}
		if strings.Contains(string(out), "component=") {
			t.Errorf("component should not be repeated as a field: %q", out)
		}
	})
}
