package gpu

import (
	"errors"
	"testing"
)

func TestNewBackendNoop(t *testing.T) {
	b, err := NewBackend(1, BackendOptions{Kind: KindNoop})
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	defer b.Destroy()

	if b.ID() != 1 {
		t.Errorf("ID = %d, want 1", b.ID())
	}
	if b.Kind() != KindNoop {
		t.Errorf("Kind = %v, want noop", b.Kind())
	}
	if b.Device() == nil {
		t.Error("expected non-nil device")
	}
	if b.Queue() == nil {
		t.Error("expected non-nil queue")
	}
}

func TestNewBackendAutoFallsBackToNoop(t *testing.T) {
	// An explicit chain containing only noop must always succeed.
	b, err := NewBackend(7, BackendOptions{
		Kind:  KindAuto,
		Chain: []BackendKind{KindNoop},
	})
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	defer b.Destroy()

	if b.Kind() != KindNoop {
		t.Errorf("Kind = %v, want noop", b.Kind())
	}
}

func TestNewBackendDefaultChainAlwaysSucceeds(t *testing.T) {
	// The default chain ends with noop, so auto detection can never
	// fail even on machines without a GPU.
	b, err := NewBackend(2, BackendOptions{Kind: KindAuto})
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	b.Destroy()
}

func TestNewBackendUnknownKind(t *testing.T) {
	_, err := NewBackend(3, BackendOptions{Kind: BackendKind(99)})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestDefaultChainOrder(t *testing.T) {
	chain := DefaultChain()
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0] != KindVulkan || chain[1] != KindNoop {
		t.Errorf("chain = %v, want [vulkan noop]", chain)
	}
}

func TestBackendKindShareable(t *testing.T) {
	for _, k := range []BackendKind{KindAuto, KindVulkan, KindNoop} {
		if !k.Shareable() {
			t.Errorf("%v.Shareable() = false, want true", k)
		}
	}
}

func TestBackendReportErrorDropsOldest(t *testing.T) {
	b, err := NewBackend(4, BackendOptions{Kind: KindNoop})
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	defer b.Destroy()

	// Overfill the buffer; ReportError must never block.
	for i := 0; i < backendErrorBuffer+3; i++ {
		b.ReportError(errors.New("boom"))
	}

	count := 0
	for {
		select {
		case <-b.Errors():
			count++
		default:
			if count != backendErrorBuffer {
				t.Errorf("buffered %d errors, want %d", count, backendErrorBuffer)
			}
			return
		}
	}
}

func TestBackendReportErrorNil(t *testing.T) {
	b, err := NewBackend(5, BackendOptions{Kind: KindNoop})
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	defer b.Destroy()

	b.ReportError(nil)
	select {
	case err := <-b.Errors():
		t.Errorf("unexpected error delivered: %v", err)
	default:
	}
}
