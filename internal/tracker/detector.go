package tracker

// Detect compares a newly observed price to the last known one.
//
// Both results are nil when previous is nil (baseline observation). When
// previous is exactly zero the relative change is undefined, so both results
// are suppressed as well; a zero-previous transition must never alert.
// Otherwise change = current − previous and percent = change / previous
// (a fraction, not ×100).
func Detect(previous *float64, current float64) (change, percent *float64) {
	if previous == nil || *previous == 0 {
		return nil, nil
	}
	c := current - *previous
	p := c / *previous
	return &c, &p
}
