package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs. It emits when the
// percentage crosses a bucket boundary or when the labelled file changes.
type ProgressSampler struct {
	bucketSize float64
	lastLabel  string
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 10).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. A negative
// percent means unknown and only label changes emit.
func (s *ProgressSampler) ShouldLog(percent float64, label string) bool {
	if s == nil {
		return true
	}
	label = strings.TrimSpace(label)
	emit := false
	if label != "" && label != s.lastLabel {
		s.lastLabel = label
		emit = true
	}
	if percent >= 0 {
		bucket := int(percent / s.bucketSize)
		if percent >= 100 {
			bucket = int(100 / s.bucketSize)
		}
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastLabel = ""
	s.lastBucket = -1
}
