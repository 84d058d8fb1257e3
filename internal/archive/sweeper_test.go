package archive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type archiverStub struct {
	mu      sync.Mutex
	calls   int
	blocked chan struct{}
	err     error
}

func (a *archiverStub) ArchivePastDue(ctx context.Context) (int, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.blocked != nil {
		<-a.blocked
	}
	if a.err != nil {
		return 0, a.err
	}
	return 1, nil
}

func (a *archiverStub) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type purgerStub struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *purgerStub) PurgeExpiredSessions(ctx context.Context) error {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.err
}

func (p *purgerStub) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestSweeper_Start_RunsImmediateSweep(t *testing.T) {
	t.Parallel()

	stub := &archiverStub{}
	sweeper := NewSweeper(stub, WithSchedule("@every 1h"))

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sweeper.Stop()

	if got := stub.callCount(); got != 1 {
		t.Fatalf("expected one immediate sweep, got %d", got)
	}
}

func TestSweeper_Start_RejectsDoubleStart(t *testing.T) {
	t.Parallel()

	sweeper := NewSweeper(&archiverStub{}, WithSchedule("@every 1h"))
	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sweeper.Stop()

	if err := sweeper.Start(context.Background()); err == nil {
		t.Fatalf("expected error on second Start")
	}
}

func TestSweeper_Start_RejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	sweeper := NewSweeper(&archiverStub{}, WithSchedule("not a schedule"))
	if err := sweeper.Start(context.Background()); err == nil {
		t.Fatalf("expected schedule parse error")
	}
}

func TestSweeper_SkipsOverlappingSweep(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	stub := &archiverStub{blocked: release}
	sweeper := NewSweeper(stub, WithSchedule("@every 1h"))

	done := make(chan struct{})
	go func() {
		sweeper.sweep(context.Background())
		close(done)
	}()

	deadline := time.After(time.Second)
	for stub.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatalf("first sweep never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	sweeper.sweep(context.Background())
	if got := stub.callCount(); got != 1 {
		t.Fatalf("expected overlapping sweep to be skipped, got %d calls", got)
	}

	close(release)
	<-done
}

func TestSweeper_PurgesSessionsOnEverySweep(t *testing.T) {
	t.Parallel()

	purger := &purgerStub{}
	sweeper := NewSweeper(&archiverStub{}, WithSchedule("@every 1h"), WithSessionPurger(purger))

	sweeper.sweep(context.Background())
	sweeper.sweep(context.Background())

	if got := purger.callCount(); got != 2 {
		t.Fatalf("expected purge per sweep, got %d", got)
	}
}

func TestSweeper_PurgesSessionsAfterFailedArchive(t *testing.T) {
	t.Parallel()

	purger := &purgerStub{}
	stub := &archiverStub{err: errors.New("database locked")}
	sweeper := NewSweeper(stub, WithSchedule("@every 1h"), WithSessionPurger(purger))

	sweeper.sweep(context.Background())

	if got := purger.callCount(); got != 1 {
		t.Fatalf("expected purge despite archive failure, got %d", got)
	}
}

func TestSweeper_ContinuesAfterFailedSweep(t *testing.T) {
	t.Parallel()

	stub := &archiverStub{err: errors.New("database locked")}
	sweeper := NewSweeper(stub, WithSchedule("@every 1h"))

	sweeper.sweep(context.Background())
	sweeper.sweep(context.Background())

	if got := stub.callCount(); got != 2 {
		t.Fatalf("expected sweeps to keep firing after failure, got %d", got)
	}
}
