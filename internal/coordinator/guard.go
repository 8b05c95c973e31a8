package coordinator

import "sync"

// signatureGuard tracks game signatures currently being persisted, so two
// concurrent jobs for the same log don't both reach the insert. The
// database unique constraint remains the final arbiter; this only narrows
// the window.
type signatureGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newSignatureGuard() *signatureGuard {
	return &signatureGuard{inflight: make(map[string]struct{})}
}

// acquire reports whether the signature was free and claims it if so.
func (g *signatureGuard) acquire(sig string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inflight[sig]; ok {
		return false
	}
	g.inflight[sig] = struct{}{}
	return true
}

func (g *signatureGuard) release(sig string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, sig)
}
