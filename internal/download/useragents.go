package download

import "sync/atomic"

// RotatingUserAgent cycles through agents on every call to avoid
// presenting a single static User-Agent for the whole run (spec.md
// §4.B, §6). Safe for concurrent use by the worker pool.
type RotatingUserAgent struct {
	agents []string
	next   uint32
}

// NewRotatingUserAgent builds a rotator over agents. Panics if agents
// is empty — callers always pass config.BrowserAgents, which is never
// empty.
func NewRotatingUserAgent(agents []string) *RotatingUserAgent {
	if len(agents) == 0 {
		panic("download: NewRotatingUserAgent requires at least one agent")
	}
	return &RotatingUserAgent{agents: agents}
}

// Next returns the next user agent string in rotation.
func (r *RotatingUserAgent) Next() string {
	i := atomic.AddUint32(&r.next, 1) - 1
	return r.agents[i%uint32(len(r.agents))]
}
