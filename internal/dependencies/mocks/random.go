package mocks

import (
	"github.com/mcoot/keyshop/internal/dependencies/random"
)

var _ random.Random = (*MockRandom)(nil)

// MockRandom hands out queued key groups in order
type MockRandom struct {
	groups []string
	next   int
}

// NewMockRandom creates an empty MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Group returns the next queued group. Once the queue runs dry it pads with
// the first character of the alphabet.
func (r *MockRandom) Group(length int, alphabet string) string {
	if r.next < len(r.groups) {
		g := r.groups[r.next]
		r.next++
		return g
	}
	if alphabet == "" {
		return ""
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[0]
	}
	return string(out)
}

// QueueGroups adds groups to hand out
func (r *MockRandom) QueueGroups(groups ...string) {
	r.groups = append(r.groups, groups...)
}
