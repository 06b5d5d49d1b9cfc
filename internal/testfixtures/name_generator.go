package testfixtures

import (
	"fmt"
	"sync"
)

var trainNames = NewNameGenerator("T")

// NameGenerator produces deterministic four character train names such as
// "T001". The sequence wraps after the largest number that fits.
type NameGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter int64
}

// NewNameGenerator constructs a generator whose names start with prefix.
// Prefixes longer than three characters are truncated; empty means "T".
func NewNameGenerator(prefix string) *NameGenerator {
	if prefix == "" {
		prefix = "T"
	}
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return &NameGenerator{prefix: prefix}
}

// Next returns the sequence number and the name derived from it.
func (g *NameGenerator) Next() (int64, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	width := 4 - len(g.prefix)
	limit := int64(1)
	for i := 0; i < width; i++ {
		limit *= 10
	}
	return g.counter, fmt.Sprintf("%s%0*d", g.prefix, width, g.counter%limit)
}

// SetCounter overrides the internal counter, enabling deterministic resets.
func (g *NameGenerator) SetCounter(counter int64) {
	g.mu.Lock()
	g.counter = counter
	g.mu.Unlock()
}
