package tsrow

import "math"

// VersionRange accumulates the minimum and maximum record version observed
// while writing a file. A freshly created file starts at the sentinel
// {Min: MaxInt64, Max: MinInt64} so that the first Observe call always
// widens the range.
type VersionRange struct {
	Min int64
	Max int64
}

// EmptyVersionRange returns the sentinel range of a file with no records
// yet.
func EmptyVersionRange() VersionRange {
	return VersionRange{Min: math.MaxInt64, Max: math.MinInt64}
}

// Observe widens r to include [minVer, maxVer].
func (r *VersionRange) Observe(minVer, maxVer int64) {
	if minVer < r.Min {
		r.Min = minVer
	}
	if maxVer > r.Max {
		r.Max = maxVer
	}
}

// Merge widens r to also cover other.
func (r *VersionRange) Merge(other VersionRange) {
	r.Observe(other.Min, other.Max)
}

// IsEmpty reports whether no version has ever been observed.
func (r VersionRange) IsEmpty() bool {
	return r.Min > r.Max
}
