package timehelper

import "time"

// NowMs returns the current wall clock as epoch milliseconds, the unit every
// deadline field on the draft document uses.
func NowMs() int64 {
	return time.Now().UnixMilli()
}
