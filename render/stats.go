package render

import "time"

// FrameStats accumulates frame durations measured with hrtime.
type FrameStats struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

// Add records one frame.
func (s *FrameStats) Add(d time.Duration) {
	s.Count++
	s.Total += d
	if d > s.Max {
		s.Max = d
	}
}

// Mean is the average frame duration, zero before the first frame.
func (s FrameStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}
