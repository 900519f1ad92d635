package core

// IDGenerator hands out creation-ordered ids derived from the clock's Unix
// milliseconds. Two ids minted in the same millisecond are still distinct and
// increasing.
type IDGenerator struct {
	now  Clock
	last int64
}

func NewIDGenerator(now Clock) *IDGenerator {
	return &IDGenerator{now: now}
}

// Observe records an id that already exists so Next never reissues it.
func (g *IDGenerator) Observe(id int64) {
	if id > g.last {
		g.last = id
	}
}

// Peek returns the id Next would return, without consuming it.
func (g *IDGenerator) Peek() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	return id
}

// Next returns a fresh id.
func (g *IDGenerator) Next() int64 {
	id := g.Peek()
	g.last = id
	return id
}
