package encoding

import (
	"math"
	"regexp"
	"strconv"
)

var progressTimePattern = regexp.MustCompile(`time=\s*(-?)(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// ParseProgressTime extracts the elapsed media time from an ffmpeg status line.
func ParseProgressTime(line string) (float64, bool) {
	match := progressTimePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(match[3])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[4], 64)
	if err != nil {
		return 0, false
	}
	if match[1] == "-" {
		return 0, true
	}
	return float64(hours*3600+minutes*60) + seconds, true
}

// Tracker converts per-file progress into one weighted overall percentage.
// Reported values never decrease and stay within [0, 100]. It is not safe for
// concurrent use.
type Tracker struct {
	durations []float64
	done      []bool
	total     float64
	offset    float64
	last      float64
}

// NewTracker weights each file by its duration. Unknown (non-positive or
// non-finite) durations count as 1.
func NewTracker(durations []float64) *Tracker {
	t := &Tracker{
		durations: make([]float64, len(durations)),
		done:      make([]bool, len(durations)),
	}
	for i, d := range durations {
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
			d = 1
		}
		t.durations[i] = d
		t.total += d
	}
	return t
}

// Weight returns the share of overall progress owned by file i.
func (t *Tracker) Weight(i int) float64 {
	if t.total == 0 || i < 0 || i >= len(t.durations) {
		return 0
	}
	return t.durations[i] / t.total
}

// FileProgress records that file i has reached elapsed seconds and returns the
// overall percentage.
func (t *Tracker) FileProgress(i int, elapsed float64) float64 {
	if i < 0 || i >= len(t.durations) || t.done[i] {
		return t.last
	}
	d := t.durations[i]
	fraction := clamp(elapsed/d, 0, 1)
	return t.report((t.offset + fraction*d) / t.total * 100)
}

// FileDone marks file i finished, whatever its outcome, and returns the
// overall percentage.
func (t *Tracker) FileDone(i int) float64 {
	if i < 0 || i >= len(t.durations) || t.done[i] {
		return t.last
	}
	t.done[i] = true
	t.offset += t.durations[i]
	return t.report(t.offset / t.total * 100)
}

// Complete forces the final 100.
func (t *Tracker) Complete() float64 {
	t.last = 100
	return t.last
}

// Current returns the last reported percentage.
func (t *Tracker) Current() float64 {
	return t.last
}

func (t *Tracker) report(value float64) float64 {
	if t.total == 0 {
		return t.last
	}
	value = clamp(value, 0, 100)
	if value > t.last {
		t.last = value
	}
	return t.last
}

func clamp(value, lo, hi float64) float64 {
	if math.IsNaN(value) {
		return lo
	}
	return math.Max(lo, math.Min(hi, value))
}
