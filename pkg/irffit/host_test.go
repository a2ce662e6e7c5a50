package irffit

import (
	"testing"
	"time"
)

func sampleFermiEdgeRequest(id string) FitFermiEdgeRequest {
	energy := linspace(-0.05, 0.05, 40)
	observed := fermiDiracConvolved(energy, 0, 5, 0.003)
	return FitFermiEdgeRequest{
		ID: id,
		FermiEdgeFitRequest: FermiEdgeFitRequest{
			Energy:           energy,
			ObservedSpectrum: observed,
			Temp:             5,
			FitTemp:          false,
			UseGlobalOpt:     true,
		},
	}
}

func TestHost_RejectsSecondSubmitWhileRunning(t *testing.T) {
	h := NewHost(nil)
	noop := func(Progress) {}
	noopResult := func(Result) {}
	noopErr := func(Error) {}

	if err := h.Submit(sampleFermiEdgeRequest("first"), noop, noopResult, noopErr); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	if err := h.Submit(sampleFermiEdgeRequest("second"), noop, noopResult, noopErr); err != ErrBusy {
		t.Fatalf("second Submit while running = %v, want ErrBusy", err)
	}
}

func TestHost_UnknownRequestTypeRejectedSynchronously(t *testing.T) {
	h := NewHost(nil)
	noop := func(Progress) {}
	noopResult := func(Result) {}
	noopErr := func(Error) {}

	var bogus Request
	if err := h.Submit(bogus, noop, noopResult, noopErr); err != ErrUnknownMessageType {
		t.Fatalf("Submit(nil Request) = %v, want ErrUnknownMessageType", err)
	}
}

func TestHost_CancelDeliversErrCancelledAndFreesHost(t *testing.T) {
	h := NewHost(nil)
	errCh := make(chan Error, 1)
	noop := func(Progress) {}
	noopResult := func(Result) {}
	noopErr := func(Error) {}
	onErr := func(e Error) { errCh <- e }

	if err := h.Submit(sampleFermiEdgeRequest("to-cancel"), noop, noopResult, onErr); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	h.Cancel()

	select {
	case e := <-errCh:
		if e.Err != ErrCancelled {
			t.Errorf("Cancel delivered err=%v, want ErrCancelled", e.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("Cancel did not deliver a terminal error within 1s")
	}

	// The host must accept new work immediately after cancellation rather
	// than waiting for the abandoned goroutine to finish on its own time.
	if err := h.Submit(sampleFermiEdgeRequest("after-cancel"), noop, noopResult, noopErr); err != nil {
		t.Fatalf("Submit after cancel failed: %v", err)
	}
}

func TestHostPool_ReturnsSameHostForSameSession(t *testing.T) {
	pool := NewHostPool(nil)
	a := pool.Get("session-1")
	b := pool.Get("session-1")
	if a != b {
		t.Error("HostPool.Get returned different Host values for the same session id")
	}
	c := pool.Get("session-2")
	if a == c {
		t.Error("HostPool.Get returned the same Host for two different session ids")
	}
}

func TestHostPool_RemoveCancelsAndDrops(t *testing.T) {
	pool := NewHostPool(nil)
	h := pool.Get("session-1")
	noop := func(Progress) {}
	noopResult := func(Result) {}
	noopErr := func(Error) {}
	if err := h.Submit(sampleFermiEdgeRequest("x"), noop, noopResult, noopErr); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	pool.Remove("session-1")

	fresh := pool.Get("session-1")
	if fresh == h {
		t.Error("HostPool.Get after Remove returned the stale Host")
	}
	if fresh.State() != "idle" {
		t.Errorf("fresh Host state = %s, want idle", fresh.State())
	}
}
