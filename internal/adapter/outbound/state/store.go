package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// FileSessionStore manages reading and writing the session file.
// It provides atomic writes (write-tmp-then-rename), automatic backups,
// and file locking (flock for cross-process, mutex for in-process).
// Saves whose content matches the file on disk are skipped.
type FileSessionStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger

	// lastSum is the content hash of the file as last read or written.
	lastSum uint64
	hasSum  bool
}

// NewFileSessionStore creates a new FileSessionStore for the given file path.
func NewFileSessionStore(path string, logger *slog.Logger) *FileSessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSessionStore{
		path:   path,
		logger: logger,
	}
}

// Load reads and parses the session file.
// If the file does not exist, it returns an empty session.
// If the file contains invalid JSON, it returns an error.
// Warns if the existing file has permissions more open than 0600.
func (s *FileSessionStore) Load() (*SessionFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("session file not found, starting anonymous", "path", s.path)
			return s.empty(), nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	// Unix permission bits are not meaningful on Windows.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(s.path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				s.logger.Warn("session file has too-open permissions, should be 0600",
					"path", s.path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	var file SessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if sum, err := contentSum(&file); err == nil {
		s.lastSum, s.hasSum = sum, true
	}
	return &file, nil
}

// Save writes the session to disk atomically.
//
// The write sequence is:
//  1. Acquire in-process mutex
//  2. Skip if the content is unchanged
//  3. Acquire flock on path+".lock"
//  4. Copy current file to path+".bak" (ignored if no current file)
//  5. Write to path+".tmp" with 0600 permissions, fsync, rename
//  6. Release flock and mutex
func (s *FileSessionStore) Save(file *SessionFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum, err := contentSum(file)
	if err != nil {
		return err
	}
	if s.hasSum && sum == s.lastSum && s.exists() {
		s.logger.Debug("session unchanged, skipping write", "path", s.path)
		return nil
	}

	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	if file.Version == "" {
		file.Version = SchemaVersion
	}
	file.UpdatedAt = now

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	lockFile, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	if current, readErr := os.ReadFile(s.path); readErr == nil {
		if writeErr := os.WriteFile(s.path+".bak", current, 0600); writeErr != nil {
			s.logger.Warn("failed to create backup", "error", writeErr)
		}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	// Rename keeps the temp file's mode; re-assert it in case the umask widened it.
	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on session file", "error", err)
	}

	s.lastSum, s.hasSum = sum, true
	s.logger.Debug("session saved", "path", s.path, "cookies", len(file.Cookies))
	return nil
}

// Clear removes the session file. A missing file is not an error.
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hasSum = false
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *FileSessionStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to session: %w", err)
	}
	return nil
}

func (s *FileSessionStore) empty() *SessionFile {
	return &SessionFile{Version: SchemaVersion}
}

func (s *FileSessionStore) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Exists returns true if the session file exists on disk.
func (s *FileSessionStore) Exists() bool {
	return s.exists()
}

// Path returns the configured file path.
func (s *FileSessionStore) Path() string {
	return s.path
}

// contentSum hashes the parts of the session that matter, ignoring
// timestamps.
func contentSum(file *SessionFile) (uint64, error) {
	view := *file
	view.CreatedAt = time.Time{}
	view.UpdatedAt = time.Time{}
	data, err := json.Marshal(&view)
	if err != nil {
		return 0, fmt.Errorf("marshal session: %w", err)
	}
	return xxhash.Sum64(data), nil
}
