package store

import "strconv"

// formatScore renders a Redis ZRANGEBYSCORE bound, preserving +inf/-inf.
func formatScore(v float64) string {
	switch {
	case v == posInf:
		return "+inf"
	case v == negInf:
		return "-inf"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

const (
	posInf = 1<<63 - 1
	negInf = -(1 << 63)
)
