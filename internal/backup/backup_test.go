package backup

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	gdrive "google.golang.org/api/drive/v3"
)

type fakeDrive struct {
	folders   map[string]string
	latest    *File
	findErr   error
	latestErr error
	uploadErr error

	created  []string
	uploaded map[string]string // name -> content
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{folders: map[string]string{}, uploaded: map[string]string{}}
}

func (f *fakeDrive) FindFolder(_ context.Context, name string) (string, bool, error) {
	if f.findErr != nil {
		return "", false, f.findErr
	}
	id, ok := f.folders[name]
	return id, ok, nil
}

func (f *fakeDrive) CreateFolder(_ context.Context, name string) (string, error) {
	id := "folder-" + name
	f.folders[name] = id
	f.created = append(f.created, name)
	return id, nil
}

func (f *fakeDrive) LatestBackup(context.Context, string, string) (File, bool, error) {
	if f.latestErr != nil {
		return File{}, false, f.latestErr
	}
	if f.latest == nil {
		return File{}, false, nil
	}
	return *f.latest, true, nil
}

func (f *fakeDrive) Upload(_ context.Context, folderID, name string, r io.Reader) (File, error) {
	if f.uploadErr != nil {
		return File{}, f.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return File{}, err
	}
	f.uploaded[name] = string(b)
	return File{ID: "file-1", Name: name}, nil
}

type fakeDB struct{ calls int }

func (d *fakeDB) Snapshot(_ context.Context, dest string) error {
	d.calls++
	return os.WriteFile(dest, []byte("SQLite format 3"), 0o600)
}

var now = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestManager(d Drive, db Snapshotter, interval time.Duration) *Manager {
	m := NewManager(d, db, Options{Interval: interval, TempDir: os.TempDir()})
	m.now = func() time.Time { return now }
	return m
}

func TestRun_FirstBackupCreatesFolder(t *testing.T) {
	d := newFakeDrive()
	db := &fakeDB{}
	m := newTestManager(d, db, 7*24*time.Hour)

	res, err := m.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Uploaded || res.File == nil {
		t.Fatalf("Run() = %+v, want upload", res)
	}
	if len(d.created) != 1 || d.created[0] != DefaultFolder {
		t.Errorf("created folders = %v, want [%s]", d.created, DefaultFolder)
	}
	want := "finance_manager_backup_20240615_103000.db"
	if got := d.uploaded[want]; got != "SQLite format 3" {
		t.Errorf("uploaded %v, want %s with snapshot content", d.uploaded, want)
	}
	if res.RunID == "" {
		t.Error("RunID empty")
	}
}

func TestRun_Cadence(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		age      time.Duration
		force    bool
		upload   bool
		nextIn   int
	}{
		{"weekly, 3 days old", 7 * 24 * time.Hour, 3 * 24 * time.Hour, false, false, 4},
		{"weekly, exactly 7 days", 7 * 24 * time.Hour, 7 * 24 * time.Hour, false, true, 0},
		{"monthly, 10 days old", 30 * 24 * time.Hour, 10 * 24 * time.Hour, false, false, 20},
		{"monthly, 31 days old", 30 * 24 * time.Hour, 31 * 24 * time.Hour, false, true, 0},
		{"forced", 7 * 24 * time.Hour, time.Hour, true, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDrive()
			d.folders[DefaultFolder] = "f1"
			d.latest = &File{ID: "old", Name: FilePrefix + "x.db", CreatedTime: now.Add(-tt.age)}
			db := &fakeDB{}
			m := newTestManager(d, db, tt.interval)

			res, err := m.Run(context.Background(), tt.force)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if res.Uploaded != tt.upload {
				t.Errorf("Uploaded = %v, want %v", res.Uploaded, tt.upload)
			}
			if (db.calls > 0) != tt.upload {
				t.Errorf("snapshot calls = %d, upload %v", db.calls, tt.upload)
			}
			if res.NextInDays != tt.nextIn {
				t.Errorf("NextInDays = %d, want %d", res.NextInDays, tt.nextIn)
			}
			if res.Previous == nil || res.Previous.ID != "old" {
				t.Errorf("Previous = %+v", res.Previous)
			}
			if len(d.created) != 0 {
				t.Errorf("existing folder recreated: %v", d.created)
			}
		})
	}
}

func TestRun_LookupFailureStillBacksUp(t *testing.T) {
	d := newFakeDrive()
	d.folders[DefaultFolder] = "f1"
	d.latestErr = errors.New("quota")
	m := newTestManager(d, &fakeDB{}, 7*24*time.Hour)

	res, err := m.Run(context.Background(), false)
	if err != nil || !res.Uploaded {
		t.Errorf("Run() = %+v, %v; want upload despite failed lookup", res, err)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("folder unavailable", func(t *testing.T) {
		d := newFakeDrive()
		d.findErr = errors.New("offline")
		_, err := newTestManager(d, &fakeDB{}, time.Hour).Run(context.Background(), false)
		if !errors.Is(err, ErrNoFolder) {
			t.Errorf("Run() error = %v, want ErrNoFolder", err)
		}
	})

	t.Run("upload fails", func(t *testing.T) {
		d := newFakeDrive()
		d.uploadErr = errors.New("503")
		res, err := newTestManager(d, &fakeDB{}, time.Hour).Run(context.Background(), false)
		if err == nil || res.Uploaded {
			t.Errorf("Run() = %+v, %v; want failure", res, err)
		}
	})
}

func TestQuote(t *testing.T) {
	if got := quote(`Bob's "backups"`); got != `'Bob\'s "backups"'` {
		t.Errorf("quote() = %s", got)
	}
	if got := quote(`a\b`); got != `'a\\b'` {
		t.Errorf("quote() = %s", got)
	}
}

func TestToFile(t *testing.T) {
	f, err := toFile(&gdrive.File{Id: "1", Name: "n", CreatedTime: "2024-06-01T08:00:00.000Z"})
	if err != nil {
		t.Fatal(err)
	}
	if !f.CreatedTime.Equal(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedTime = %v", f.CreatedTime)
	}
	if _, err := toFile(&gdrive.File{CreatedTime: "yesterday"}); err == nil {
		t.Error("toFile() with bad time error = nil")
	}
}

func TestReadSecret(t *testing.T) {
	if b, err := readSecret(`{"a":1}`, "/nope", "client"); err != nil || string(b) != `{"a":1}` {
		t.Errorf("inline: %s, %v", b, err)
	}
	if _, err := readSecret("", "", "client"); err == nil || !strings.Contains(err.Error(), "missing client") {
		t.Errorf("missing: %v", err)
	}
	if _, err := readSecret("", "/does/not/exist.json", "token"); err == nil {
		t.Error("missing file error = nil")
	}
}
