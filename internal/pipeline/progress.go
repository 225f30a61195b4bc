package pipeline

// Tracker counts completed evaluations against a fixed total.
// It is not safe for concurrent use.
type Tracker struct {
	total     int
	completed int
}

// NewTracker creates a Tracker for total evaluations.
func NewTracker(total int) *Tracker {
	return &Tracker{total: total}
}

// Update records one more completed evaluation and returns the percentage
// done. The total-th call returns exactly 100.
func (t *Tracker) Update() float64 {
	t.completed++
	if t.total <= 0 {
		return 100
	}
	return float64(t.completed) / float64(t.total) * 100
}

// Completed returns the number of recorded evaluations.
func (t *Tracker) Completed() int {
	return t.completed
}

// Total returns the expected number of evaluations.
func (t *Tracker) Total() int {
	return t.total
}
