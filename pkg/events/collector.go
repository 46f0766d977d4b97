package events

// Collector accumulates domain events raised by an aggregate until the
// application layer drains them for publishing. Aggregates embed it.
type Collector struct {
	pending []DomainEvent
}

// Record queues one or more events.
func (c *Collector) Record(evts ...DomainEvent) {
	c.pending = append(c.pending, evts...)
}

// Pending returns the queued events without draining them.
func (c *Collector) Pending() []DomainEvent {
	return c.pending
}

// Drain returns the queued events and resets the queue.
func (c *Collector) Drain() []DomainEvent {
	drained := c.pending
	c.pending = nil
	return drained
}
