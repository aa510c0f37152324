package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Retry configuration
const maxCleanupRetries = 3

var cleanupRetryDelay = 2 * time.Minute

// CleanupExpiredReports removes import error reports in dir older than ttl and
// returns how many were deleted.
func CleanupExpiredReports(dir string, ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("error reading report directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "import_errors_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= ttl {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("error deleting expired report %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// ScheduleReportCleanup registers the retention job on spec (standard 5-field
// cron) and starts the scheduler. Call Stop on the result at shutdown.
func ScheduleReportCleanup(spec, dir string, ttl time.Duration, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		for attempt := 1; attempt <= maxCleanupRetries; attempt++ {
			removed, err := CleanupExpiredReports(dir, ttl, time.Now())
			if err == nil {
				logger.Info("Report cleanup finished", zap.Int("removed", removed))
				return
			}
			logger.Warn("Report cleanup failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			time.Sleep(cleanupRetryDelay)
		}
		logger.Error("Report cleanup gave up", zap.Int("attempts", maxCleanupRetries))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}

	c.Start()
	return c, nil
}
