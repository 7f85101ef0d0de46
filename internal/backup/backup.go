// Package backup uploads snapshots of the SQLite ledger to Google Drive on a
// weekly or monthly cadence.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	FilePrefix    = "finance_manager_backup_"
	DefaultFolder = "Finance_Manager_Backups"
	fileStamp     = "20060102_150405"
)

var ErrNoFolder = errors.New("backup folder unavailable")

// File is a backup stored remotely.
type File struct {
	ID          string
	Name        string
	CreatedTime time.Time
}

// Drive is the subset of the remote store the manager needs.
type Drive interface {
	FindFolder(ctx context.Context, name string) (id string, found bool, err error)
	CreateFolder(ctx context.Context, name string) (string, error)
	LatestBackup(ctx context.Context, folderID, prefix string) (File, bool, error)
	Upload(ctx context.Context, folderID, name string, content io.Reader) (File, error)
}

// Snapshotter produces a consistent copy of the database file.
type Snapshotter interface {
	Snapshot(ctx context.Context, dest string) error
}

type Options struct {
	Folder   string
	Interval time.Duration
	// TempDir holds snapshots while they upload; os.TempDir when empty.
	TempDir string
}

// Result describes one backup attempt.
type Result struct {
	RunID      string `json:"run_id"`
	Uploaded   bool   `json:"uploaded"`
	File       *File  `json:"file,omitempty"`
	Previous   *File  `json:"previous,omitempty"`
	DaysSince  int    `json:"days_since"`
	NextInDays int    `json:"next_in_days,omitempty"`
}

type Manager struct {
	drive    Drive
	db       Snapshotter
	folder   string
	interval time.Duration
	tempDir  string
	now      func() time.Time
}

func NewManager(drive Drive, db Snapshotter, opts Options) *Manager {
	if opts.Folder == "" {
		opts.Folder = DefaultFolder
	}
	if opts.Interval <= 0 {
		opts.Interval = 7 * 24 * time.Hour
	}
	return &Manager{
		drive:    drive,
		db:       db,
		folder:   opts.Folder,
		interval: opts.Interval,
		tempDir:  opts.TempDir,
		now:      time.Now,
	}
}

// Due reports whether the newest remote backup is at least one interval
// old. A failed lookup counts as due: a redundant backup beats a missed one.
func (m *Manager) Due(ctx context.Context) (bool, *File) {
	folderID, found, err := m.drive.FindFolder(ctx, m.folder)
	if err != nil {
		slog.WarnContext(ctx, "Could not check backup folder, backing up anyway", "folder", m.folder, "error", err)
		return true, nil
	}
	if !found {
		return true, nil
	}

	last, ok, err := m.drive.LatestBackup(ctx, folderID, FilePrefix)
	if err != nil {
		slog.WarnContext(ctx, "Could not check last backup, backing up anyway", "folder", m.folder, "error", err)
		return true, nil
	}
	if !ok {
		return true, nil
	}
	return m.now().Sub(last.CreatedTime) >= m.interval, &last
}

// Run uploads a snapshot when one is due, or always when force is set.
func (m *Manager) Run(ctx context.Context, force bool) (Result, error) {
	res := Result{RunID: uuid.NewString()}

	due, last := m.Due(ctx)
	if last != nil {
		res.Previous = last
		res.DaysSince = int(m.now().Sub(last.CreatedTime).Hours() / 24)
	}
	if !due && !force {
		res.NextInDays = int(m.interval.Hours()/24) - res.DaysSince
		slog.InfoContext(ctx, "Backup not due yet",
			"run_id", res.RunID,
			"days_since", res.DaysSince,
			"next_in_days", res.NextInDays)
		return res, nil
	}

	folderID, err := m.folderID(ctx)
	if err != nil {
		return res, err
	}

	file, err := m.upload(ctx, folderID)
	if err != nil {
		return res, err
	}
	res.Uploaded = true
	res.File = &file

	slog.InfoContext(ctx, "Database backed up",
		"run_id", res.RunID,
		"file", file.Name,
		"folder", m.folder,
		"drive_id", file.ID)
	return res, nil
}

func (m *Manager) folderID(ctx context.Context) (string, error) {
	id, found, err := m.drive.FindFolder(ctx, m.folder)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoFolder, err)
	}
	if found {
		return id, nil
	}
	id, err = m.drive.CreateFolder(ctx, m.folder)
	if err != nil {
		return "", fmt.Errorf("%w: create %q: %w", ErrNoFolder, m.folder, err)
	}
	slog.InfoContext(ctx, "Created backup folder", "folder", m.folder)
	return id, nil
}

func (m *Manager) upload(ctx context.Context, folderID string) (File, error) {
	dir, err := os.MkdirTemp(m.tempDir, "fintrack-backup-")
	if err != nil {
		return File{}, fmt.Errorf("create snapshot dir: %w", err)
	}
	defer os.RemoveAll(dir)

	name := FilePrefix + m.now().Format(fileStamp) + ".db"
	path := filepath.Join(dir, name)
	if err := m.db.Snapshot(ctx, path); err != nil {
		return File{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	file, err := m.drive.Upload(ctx, folderID, name, f)
	if err != nil {
		return File{}, fmt.Errorf("upload %s: %w", name, err)
	}
	return file, nil
}
