package internal

import "sync"

// ResultCollector receives the outcomes of test statements.
type ResultCollector interface {
	AddResult(name string, passed bool)
}

// CollectorFunc adapts a function to a ResultCollector.
type CollectorFunc func(name string, passed bool)

// AddResult calls f.
func (f CollectorFunc) AddResult(name string, passed bool) {
	f(name, passed)
}

// Result is a single recorded test outcome.
type Result struct {
	Name   string
	Passed bool
}

// MemoryCollector records test results in memory. It is safe for concurrent
// use.
type MemoryCollector struct {
	mu      sync.Mutex
	results []Result
}

// NewMemoryCollector creates an empty collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// AddResult records a result.
func (c *MemoryCollector) AddResult(name string, passed bool) {
	c.mu.Lock()
	c.results = append(c.results, Result{Name: name, Passed: passed})
	c.mu.Unlock()
}

// Results returns a copy of the recorded results in the order they were
// added.
func (c *MemoryCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}

// Counts returns the numbers of passed and failed results.
func (c *MemoryCollector) Counts() (passed, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Reset discards all recorded results.
func (c *MemoryCollector) Reset() {
	c.mu.Lock()
	c.results = nil
	c.mu.Unlock()
}

// MultiCollector delivers each result to every collector in order.
type MultiCollector []ResultCollector

// AddResult delivers a result to each collector.
func (m MultiCollector) AddResult(name string, passed bool) {
	for _, c := range m {
		c.AddResult(name, passed)
	}
}
