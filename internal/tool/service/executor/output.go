package executor

import (
	"bytes"
	"sync"

	"github.com/Cyclone1070/iavtools/internal/tool/helper/content"
)

// BinaryPlaceholder replaces output that looks like binary data.
const BinaryPlaceholder = "[Binary Content]"

// outputBudget is the byte allowance of one run. Buffered runs share a
// single budget between stdout and stderr.
type outputBudget struct {
	mu        sync.Mutex
	remaining int // negative means unlimited
	overflow  *collector
}

func newOutputBudget(maxBytes int) *outputBudget {
	if maxBytes <= 0 {
		return &outputBudget{remaining: -1}
	}
	return &outputBudget{remaining: maxBytes}
}

// take grants c up to n bytes. The first collector refused bytes owns the
// truncation marker.
func (b *outputBudget) take(c *collector, n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining < 0 {
		return n
	}
	granted := min(n, b.remaining)
	b.remaining -= granted
	if granted < n && b.overflow == nil {
		b.overflow = c
	}
	return granted
}

func (b *outputBudget) refund(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining >= 0 {
		b.remaining += n
	}
}

func (b *outputBudget) marks(c *collector) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow == c
}

// collector captures command output with size limits and binary content detection.
// Bytes past the budget are dropped; the writer never reports short writes so the
// child is not blocked on a full pipe.
type collector struct {
	buffer    bytes.Buffer
	budget    *outputBudget
	truncated bool
	isBinary  bool

	bytesChecked int
	sampleSize   int
}

func newCollector(maxBytes int, sampleSize int) *collector {
	return &collector{
		budget:     newOutputBudget(maxBytes),
		sampleSize: sampleSize,
	}
}

// newCollectorPair returns two collectors drawing on one budget of maxBytes.
func newCollectorPair(maxBytes int, sampleSize int) (*collector, *collector) {
	budget := newOutputBudget(maxBytes)
	return &collector{budget: budget, sampleSize: sampleSize},
		&collector{budget: budget, sampleSize: sampleSize}
}

func (c *collector) Write(p []byte) (n int, err error) {
	if c.isBinary {
		return len(p), nil
	}

	if c.bytesChecked < c.sampleSize {
		toCheck := p
		if remaining := c.sampleSize - c.bytesChecked; len(toCheck) > remaining {
			toCheck = toCheck[:remaining]
		}
		if content.IsBinaryContent(toCheck) {
			c.isBinary = true
			c.budget.refund(c.buffer.Len())
			c.buffer.Reset()
			return len(p), nil
		}
		c.bytesChecked += len(toCheck)
	}

	toWrite := p
	if granted := c.budget.take(c, len(p)); granted < len(p) {
		toWrite = p[:granted]
		c.truncated = true
	}
	if len(toWrite) == 0 {
		return len(p), nil
	}

	if _, err := c.buffer.Write(toWrite); err != nil {
		return 0, err
	}
	return len(p), nil
}

// String renders the captured output. Truncated output never ends in a
// partial UTF-8 sequence. Only the collector that overflowed the shared
// budget carries the truncation marker.
func (c *collector) String() string {
	if c.isBinary {
		return BinaryPlaceholder
	}
	if !c.truncated {
		return c.buffer.String()
	}
	out := content.TrimPartialRune(c.buffer.String())
	if c.budget.marks(c) {
		out += content.TruncationMarker
	}
	return out
}

func (c *collector) Truncated() bool {
	return c.truncated
}

func (c *collector) Binary() bool {
	return c.isBinary
}

// syncWriter serialises writes from the two drain goroutines of a streamed run.
type syncWriter struct {
	mu sync.Mutex
	w  *collector
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
