package interrupt

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestRegister_CancelsContextWhenInterrupted(t *testing.T) {
	ctx := Register(context.Background())
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("failed to send SIGINT: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("context was not cancelled")
	}
}

func TestRegister_StopsListeningWhenParentIsDone(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx := Register(parent)
	cancel()
	if !IsCancelled(ctx) {
		t.Errorf("derived context should be cancelled with its parent")
	}
}

func TestIsCancelled_ReflectsContextState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	if IsCancelled(ctx) {
		t.Fatal("context was not canceled but func returned true")
	}
	cancel()
	if !IsCancelled(ctx) {
		t.Fatalf("context was canceled but func returned false")
	}
}
