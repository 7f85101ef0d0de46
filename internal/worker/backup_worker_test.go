package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backup"
)

type fakeRunner struct {
	mu     sync.Mutex
	calls  int
	forced int
	err    error
	ran    chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{ran: make(chan struct{}, 16)}
}

func (f *fakeRunner) Run(_ context.Context, force bool) (backup.Result, error) {
	f.mu.Lock()
	f.calls++
	if force {
		f.forced++
	}
	f.mu.Unlock()
	f.ran <- struct{}{}
	if f.err != nil {
		return backup.Result{RunID: "r"}, f.err
	}
	return backup.Result{RunID: "r", Uploaded: true, File: &backup.File{Name: "b.db"}}, nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestBackupWorker_DebouncesBursts(t *testing.T) {
	runner := newFakeRunner()
	w := NewBackupWorker(runner, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, time.Hour) }()

	msg := amqp.NewLedgerChangedMessage("transaction", 1, "created")
	for range 5 {
		if err := w.HandleLedgerChanged(ctx, msg); err != nil {
			t.Fatalf("HandleLedgerChanged() error = %v", err)
		}
	}

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("backup not triggered")
	}
	// nothing else pending: no second run
	select {
	case <-runner.ran:
		t.Errorf("burst triggered %d runs, want 1", runner.count())
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if runner.forced != 0 {
		t.Errorf("forced runs = %d, want 0", runner.forced)
	}
}

func TestBackupWorker_Periodic(t *testing.T) {
	runner := newFakeRunner()
	w := NewBackupWorker(runner, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx, 20*time.Millisecond) }()

	for i := 0; i < 2; i++ {
		select {
		case <-runner.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("periodic run %d missing", i+1)
		}
	}
}

func TestBackupWorker_HandleNeverBlocks(t *testing.T) {
	w := NewBackupWorker(newFakeRunner(), time.Second)
	msg := amqp.NewLedgerChangedMessage("salary", 2, "updated")
	for range 100 {
		if err := w.HandleLedgerChanged(context.Background(), msg); err != nil {
			t.Fatal(err)
		}
	}
	if len(w.trigger) != 1 {
		t.Errorf("pending triggers = %d, want 1", len(w.trigger))
	}
}

func TestBackupWorker_CheckSwallowsErrors(t *testing.T) {
	runner := newFakeRunner()
	runner.err = errors.New("drive down")
	w := NewBackupWorker(runner, time.Second)

	w.Check(context.Background(), "test")
	if runner.count() != 1 {
		t.Errorf("calls = %d, want 1", runner.count())
	}
}
