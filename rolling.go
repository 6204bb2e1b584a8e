// FILE: lixenwraith/vlog/rolling.go
package vlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// RollingFileSink writes events to daily files in a directory, rotating to a
// sequence-numbered file when the size limit would be exceeded, and deletes
// files past the retention period on a schedule.
//
// File names are YYYY-MM-DD.log for a day's first file and YYYY-MM-DD.<n>.log
// for its rotations. Write, Sync and Close are called from the owning
// AsyncSink's worker only; Cleanup may run concurrently.
type RollingFileSink struct {
	dir             string
	layout          Layout
	retentionDays   int
	maxFileBytes    int64
	cleanupInterval time.Duration
	now             func() time.Time

	// worker-owned
	file *os.File
	day  string
	seq  int
	size int64

	currentPath atomic.Value // stores string, read by cleanup
	currentSize atomic.Int64
	rotations   atomic.Uint64
	deletions   atomic.Uint64

	cronMu    sync.Mutex
	scheduler *cron.Cron
}

// NewRollingFileSink creates the directory if needed. A nil layout selects
// the line layout.
func NewRollingFileSink(dir string, layout Layout) (*RollingFileSink, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmtErrorf("log directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmtErrorf("failed to create log directory '%s': %w", dir, err)
	}
	if layout == nil {
		layout = NewLineLayout(nil)
	}
	s := &RollingFileSink{
		dir:             dir,
		layout:          layout,
		retentionDays:   int(defaultConfig.RetentionDays),
		cleanupInterval: time.Duration(defaultConfig.CleanupIntervalMins) * time.Minute,
		now:             time.Now,
	}
	s.currentPath.Store("")
	return s, nil
}

// RetentionDays sets how many days of files are kept; 0 or less keeps all.
func (s *RollingFileSink) RetentionDays(days int) *RollingFileSink {
	s.retentionDays = days
	return s
}

// MaxFileBytes sets the rotation size; 0 disables size rotation.
func (s *RollingFileSink) MaxFileBytes(n int64) *RollingFileSink {
	s.maxFileBytes = n
	return s
}

// CleanupInterval sets the retention schedule; 0 disables the scheduled task
// but keeps the pass performed on Open.
func (s *RollingFileSink) CleanupInterval(d time.Duration) *RollingFileSink {
	s.cleanupInterval = d
	return s
}

// Clock replaces the time source used for file naming and retention.
func (s *RollingFileSink) Clock(now func() time.Time) *RollingFileSink {
	if now != nil {
		s.now = now
	}
	return s
}

// Dir returns the log directory.
func (s *RollingFileSink) Dir() string {
	return s.dir
}

// CurrentPath returns the path of the open file, empty if none.
func (s *RollingFileSink) CurrentPath() string {
	return s.currentPath.Load().(string)
}

func (s *RollingFileSink) Support(e *Event) bool {
	return supportEvent(e)
}

// Open runs a retention pass and schedules the recurring one.
func (s *RollingFileSink) Open() error {
	if _, err := s.Cleanup(s.now()); err != nil {
		internalLog("%v", err)
	}

	s.cronMu.Lock()
	defer s.cronMu.Unlock()
	if s.scheduler != nil || s.retentionDays <= 0 || s.cleanupInterval <= 0 {
		return nil
	}
	s.scheduler = cron.New()
	s.scheduler.Schedule(cron.Every(s.cleanupInterval), cron.FuncJob(func() {
		if _, err := s.Cleanup(s.now()); err != nil {
			internalLog("%v", err)
		}
	}))
	s.scheduler.Start()
	return nil
}

// Close cancels the cleanup schedule and closes the current file.
func (s *RollingFileSink) Close() error {
	s.cronMu.Lock()
	if s.scheduler != nil {
		<-s.scheduler.Stop().Done()
		s.scheduler = nil
	}
	s.cronMu.Unlock()

	return s.closeFile()
}

// Sync commits the current file to disk.
func (s *RollingFileSink) Sync() error {
	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file '%s': %w", s.file.Name(), err)
	}
	return nil
}

// Write appends the formatted event. A record that does not fit in the
// current file starts a new one, unless the record alone is at least as large
// as the limit, in which case it is appended where it is.
func (s *RollingFileSink) Write(e *Event) error {
	data := s.layout.Format(e)
	n := int64(len(data))

	if err := s.ensureFile(); err != nil {
		return err
	}

	if s.maxFileBytes > 0 && s.size+n > s.maxFileBytes && n < s.maxFileBytes {
		if err := s.rotate(); err != nil {
			return err
		}
	}

	written, err := s.file.WriteString(data)
	s.size += int64(written)
	s.currentSize.Store(s.size)
	if err != nil {
		return fmtErrorf("failed to write to log file '%s': %w", s.file.Name(), err)
	}
	return nil
}

// ensureFile opens the latest file of the current day if none is open, or if
// the day has changed since it was opened.
func (s *RollingFileSink) ensureFile() error {
	day := s.now().Format(dayLayout)
	if s.file != nil && s.day == day {
		return nil
	}
	if s.file != nil {
		if err := s.closeFile(); err != nil {
			internalLog("%v", err)
		}
	}

	seq, err := s.latestSequence(day)
	if err != nil {
		return err
	}
	return s.openFile(day, seq, 0)
}

// rotate closes the current file and creates the next unused sequence number.
func (s *RollingFileSink) rotate() error {
	if err := s.closeFile(); err != nil {
		// Continue with rotation anyway
		internalLog("failed to close log file before rotation: %v", err)
	}

	for seq := s.seq + 1; ; seq++ {
		err := s.openFile(s.day, seq, os.O_EXCL)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmtErrorf("failed to create log file during rotation: %w", err)
		}
	}
	s.rotations.Add(1)
	return nil
}

// openFile opens the file for day and seq for appending, creating it if
// needed. Extra flags are added to the open call.
func (s *RollingFileSink) openFile(day string, seq int, flag int) error {
	path := filepath.Join(s.dir, logFileName(day, seq))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY|flag, 0644)
	if err != nil {
		return fmtErrorf("failed to open log file '%s': %w", path, err)
	}

	var size int64
	if fi, errStat := f.Stat(); errStat == nil {
		size = fi.Size()
	}

	s.file, s.day, s.seq, s.size = f, day, seq, size
	s.currentPath.Store(path)
	s.currentSize.Store(size)
	return nil
}

func (s *RollingFileSink) closeFile() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	s.currentPath.Store("")

	var err error
	if errSync := f.Sync(); errSync != nil {
		err = fmtErrorf("failed to sync log file '%s': %w", f.Name(), errSync)
	}
	if errClose := f.Close(); errClose != nil {
		err = combineErrors(err, fmtErrorf("failed to close log file '%s': %w", f.Name(), errClose))
	}
	return err
}

// latestSequence returns the highest sequence number present for day, 0 if
// the day has no files yet.
func (s *RollingFileSink) latestSequence(day string) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmtErrorf("failed to read log directory '%s': %w", s.dir, err)
	}
	latest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		d, seq, ok := parseLogFileName(entry.Name())
		if ok && d == day && seq > latest {
			latest = seq
		}
	}
	return latest, nil
}

func (s *RollingFileSink) fillStats(st *SinkStats) {
	st.CurrentFile = s.CurrentPath()
	st.CurrentSize = s.currentSize.Load()
	st.Rotations = s.rotations.Load()
	st.Deletions = s.deletions.Load()
}

// logFileName builds the name for day and sequence; sequence 0 is the base file.
func logFileName(day string, seq int) string {
	if seq == 0 {
		return day + fileExtension
	}
	return fmt.Sprintf("%s.%d%s", day, seq, fileExtension)
}

// parseLogFileName reverses logFileName.
func parseLogFileName(name string) (day string, seq int, ok bool) {
	base, found := strings.CutSuffix(name, fileExtension)
	if !found {
		return "", 0, false
	}
	day, seqStr, hasSeq := strings.Cut(base, ".")
	if _, err := time.Parse(dayLayout, day); err != nil {
		return "", 0, false
	}
	if !hasSeq {
		return day, 0, true
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil || seq <= 0 {
		return "", 0, false
	}
	return day, seq, true
}
