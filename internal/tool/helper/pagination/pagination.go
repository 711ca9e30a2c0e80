package pagination

// Result holds pagination metadata.
type Result struct {
	TotalCount int
	Truncated  bool // more items exist past offset+limit
}

// Apply returns the page of items starting at offset holding at most limit
// items. Out-of-range offsets yield an empty page; a limit <= 0 means no limit.
func Apply[T any](items []T, offset, limit int) ([]T, Result) {
	total := len(items)
	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	return items[start:end], Result{
		TotalCount: total,
		Truncated:  end < total,
	}
}
