package postgres

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues calculation and lease IDs. IDs minted by one
// generator sort in issue order, including several within the same
// millisecond.
type ULIDGenerator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// WithNow overrides the clock that stamps new IDs.
func (g *ULIDGenerator) WithNow(now func() time.Time) *ULIDGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
	return g
}

func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
