package diag

import "sort"

// Bag is a capacity-bounded, append-only collection of diagnostics. The
// pipeline never deduplicates: Add always appends a distinct entry, even
// if an identical one was already reported.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a Bag that holds at most max diagnostics. A max <= 0 means
// unbounded.
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 {
		capHint = 64
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add appends d, returning false if the bag's capacity is exhausted.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

// HasErrors reports whether any diagnostic has SevError or above.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Items returns the diagnostics in insertion order. Callers must not
// mutate the returned slice.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends other's diagnostics, preserving relative order and growing
// capacity if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if b.max > 0 && newTotal > b.max {
		b.max = newTotal
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, start, end, severity (desc), then
// code, giving a stable and deterministic order for output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
