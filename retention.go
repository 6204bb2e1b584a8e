// FILE: lixenwraith/vlog/retention.go
package vlog

import (
	"os"
	"path/filepath"
	"time"
)

// Cleanup deletes log files whose day starts strictly before now minus
// retentionDays. With a retention of 7 days, the file dated seven days ago
// is deleted unless now is exactly midnight. The currently open file is never
// deleted. Per-file failures are reported and do not stop the scan; the number
// of deleted files is returned.
func (s *RollingFileSink) Cleanup(now time.Time) (int, error) {
	if s.retentionDays <= 0 {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -s.retentionDays)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmtErrorf("failed to read log directory '%s' for retention cleanup: %w", s.dir, err)
	}

	current := filepath.Base(s.CurrentPath())
	var deletedCount int
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == current {
			continue
		}
		day, _, ok := parseLogFileName(entry.Name())
		if !ok {
			continue
		}
		dayStart, err := time.ParseInLocation(dayLayout, day, now.Location())
		if err != nil || !dayStart.Before(cutoff) {
			continue
		}
		filePath := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(filePath); err != nil {
			internalLog("failed to remove expired log file '%s': %v", filePath, err)
			continue
		}
		deletedCount++
		s.deletions.Add(1)
	}

	return deletedCount, nil
}

// DirSize returns the total size of the log files in the directory.
func (s *RollingFileSink) DirSize() (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmtErrorf("failed to read log directory '%s': %w", s.dir, err)
	}
	var size int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, _, ok := parseLogFileName(entry.Name()); !ok {
			continue
		}
		info, errInfo := entry.Info()
		if errInfo != nil {
			continue
		}
		size += info.Size()
	}
	return size, nil
}
