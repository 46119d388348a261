package extract

import (
	"fmt"
	"sync"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

// imageInitShare is the slice of the progress axis reserved for engine
// startup when recognizing a single image.
const imageInitShare = 0.2

// PageProgress maps a page's local recognition progress onto the overall
// progress axis. Page i of n owns the band [(i-1)/n, i/n], so visiting pages in
// order keeps the overall fraction non-decreasing. Page n at local 1 is exactly 1.
func PageProgress(pageIndex, pageCount int, local float64, label string) domain.ProgressEvent {
	if pageCount < 1 {
		pageCount = 1
	}
	pageIndex = clampInt(pageIndex, 1, pageCount)
	local = clamp01(local)

	return domain.ProgressEvent{
		Status:   label,
		Fraction: (float64(pageIndex-1) + local) / float64(pageCount),
	}
}

// ImageProgress maps recognition progress of a single image onto the range
// after the engine-initialization prefix.
func ImageProgress(local float64) domain.ProgressEvent {
	return domain.ProgressEvent{
		Status:   domain.StatusRecognizeImage,
		Fraction: imageInitShare + (1-imageInitShare)*clamp01(local),
	}
}

func preparingLabel(i, n int) string {
	return fmt.Sprintf("Preparing page %d of %d for OCR...", i, n)
}

func recognizingLabel(i, n int) string {
	return fmt.Sprintf("Recognizing text on page %d of %d", i, n)
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// progressSink guards one run's event stream: fractions never decrease and
// nothing is delivered after the run reaches a terminal state.
type progressSink struct {
	mu     sync.Mutex
	fn     domain.ProgressFunc
	last   float64
	closed bool
}

func newProgressSink(fn domain.ProgressFunc) *progressSink {
	return &progressSink{fn: fn}
}

func (s *progressSink) emit(evt domain.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.fn == nil {
		return
	}
	evt.Fraction = clamp01(evt.Fraction)
	if evt.Fraction < s.last {
		evt.Fraction = s.last
	}
	s.last = evt.Fraction
	s.fn(evt)
}

// complete emits the final event and closes the sink
func (s *progressSink) complete() {
	s.emit(domain.ProgressEvent{Status: domain.StatusComplete, Fraction: 1})
	s.close()
}

func (s *progressSink) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
