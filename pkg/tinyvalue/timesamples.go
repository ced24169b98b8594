package tinyvalue

// TimeSamples is a parallel ordered sequence of (time, value) pairs.
// Times are strictly increasing; all values share one TypeId (spec
// §3's TimeSamples invariant).
type TimeSamples struct {
	Times  []float64
	Values []Value
}

// Add appends a sample. Callers are responsible for keeping Times
// strictly increasing (the USDA/Crate readers append in authored
// order, which is already sorted for well-formed files).
func (ts *TimeSamples) Add(t float64, v Value) {
	ts.Times = append(ts.Times, t)
	ts.Values = append(ts.Values, v)
}

func (ts *TimeSamples) Len() int { return len(ts.Times) }

func (ts *TimeSamples) IsSorted() bool {
	for i := 1; i < len(ts.Times); i++ {
		if ts.Times[i] <= ts.Times[i-1] {
			return false
		}
	}
	return true
}

// TypeId returns the TypeId shared by all samples, or Invalid if
// empty.
func (ts *TimeSamples) TypeId() TypeId {
	if len(ts.Values) == 0 {
		return Invalid
	}
	return ts.Values[0].TypeId()
}

// Bracket finds the pair of sample indices (lo, hi) such that
// Times[lo] <= tc <= Times[hi], with lo==hi when tc lands exactly on
// or outside the sampled range (clamped per §4.3: before first ->
// first value, after last -> last value).
func (ts *TimeSamples) Bracket(tc float64) (lo, hi int) {
	n := len(ts.Times)
	if n == 0 {
		return -1, -1
	}
	if tc <= ts.Times[0] {
		return 0, 0
	}
	if tc >= ts.Times[n-1] {
		return n - 1, n - 1
	}
	// Linear scan is fine: authored time-sample counts are small in
	// practice and this keeps the logic obviously correct; a binary
	// search would duplicate sort.Search's semantics for no measured
	// benefit here.
	for i := 1; i < n; i++ {
		if ts.Times[i] == tc {
			return i, i
		}
		if ts.Times[i] > tc {
			return i - 1, i
		}
	}
	return n - 1, n - 1
}
