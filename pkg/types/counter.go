package types

// Counter is a simple tally that starts at an initial count.
type Counter struct {
	count int
}

// NewCounter returns a Counter starting at initial.
func NewCounter(initial int) *Counter {
	return &Counter{count: initial}
}

// Count returns the current value.
func (c *Counter) Count() int {
	return c.count
}

// Increment adds one and returns the new value.
func (c *Counter) Increment() int {
	c.count++
	return c.count
}

// Reset sets the count to zero, regardless of the initial count.
func (c *Counter) Reset() {
	c.count = 0
}
