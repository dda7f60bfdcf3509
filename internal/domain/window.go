package domain

import "fmt"

// Window is a lookback window length in days.
type Window int

// Samples returns the number of daily closes covering the window, including
// the close that opens it.
func (w Window) Samples() int {
	return int(w) + 1
}

// Filename returns the snapshot file name for the window.
func (w Window) Filename(prefix string) string {
	return fmt.Sprintf("%s_%dd.csv", prefix, int(w))
}

// String returns a human-readable representation.
func (w Window) String() string {
	return fmt.Sprintf("%dd", int(w))
}
