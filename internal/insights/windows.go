package insights

import (
	"math"
	"sort"

	"github.com/julianstephens/peakstate/internal/constants"
	"github.com/julianstephens/peakstate/internal/efficiency"
	"github.com/julianstephens/peakstate/internal/models"
	"github.com/julianstephens/peakstate/internal/utils"
)

// Window is one ranked hour-of-day bucket.
// Hour and Minute are the bucket's representative start, rounded to a half hour.
type Window struct {
	Rank         int     `json:"rank" yaml:"rank"`
	Hour         int     `json:"hour" yaml:"hour"`
	Minute       int     `json:"minute" yaml:"minute"`
	Efficiency   float64 `json:"efficiency" yaml:"efficiency"`
	SessionCount int     `json:"sessionCount" yaml:"sessionCount"`
	Reliability  float64 `json:"reliability" yaml:"reliability"`
}

// Clock renders the window start as H:MM.
func (w Window) Clock() string {
	return utils.FormatClock(w.Hour, w.Minute)
}

// MinuteOfDay is the window start in minutes since midnight.
func (w Window) MinuteOfDay() int {
	return utils.MinuteOfDay(w.Hour, w.Minute)
}

type hourBucket struct {
	hour      int
	count     int
	effSum    float64
	minuteSum int
}

// FindBestWindows returns up to three hour buckets ordered by mean efficiency.
//
// Reliability grows with the number of sessions in a bucket but does not
// affect the order; equal efficiencies keep ascending hour order.
func (e *Engine) FindBestWindows(entries []models.CheckInEntry) []Window {
	if len(entries) == 0 {
		return []Window{}
	}

	var buckets [24]hourBucket
	for i := range entries {
		hour, minute := entries[i].ResolveStart(e.loc)
		b := &buckets[hour]
		b.hour = hour
		b.count++
		b.effSum += efficiency.Score(&entries[i])
		b.minuteSum += minute
	}

	used := make([]hourBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.count > 0 {
			used = append(used, b)
		}
	}
	sort.SliceStable(used, func(i, j int) bool {
		return mean(used[i]) > mean(used[j])
	})

	n := min(len(used), constants.MaxBestWindows)
	windows := make([]Window, n)
	for i, b := range used[:n] {
		avgMinute := int(math.Floor(float64(b.minuteSum)/float64(b.count) + 0.5))
		hour, minute := roundToHalfHour(b.hour, avgMinute)
		windows[i] = Window{
			Rank:         i + 1,
			Hour:         hour,
			Minute:       minute,
			Efficiency:   mean(b),
			SessionCount: b.count,
			Reliability:  Reliability(b.count),
		}
	}
	return windows
}

// Reliability is the confidence weight of a bucket holding n sessions:
// 0.5 for one session, +0.1 per extra session, 1.0 from five sessions on.
func Reliability(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n >= constants.FullReliabilitySessions {
		return 1
	}
	return math.Min(1, float64(constants.BaseReliabilityTenths+n-1)/10)
}

// roundToHalfHour moves a bucket start to the nearest half-hour mark:
// late starts round up to the next full hour, early ones sit at half past.
func roundToHalfHour(hour, minute int) (int, int) {
	if minute >= 30 {
		return utils.NormalizeHour(hour + 1), 0
	}
	return hour, 30
}

func mean(b hourBucket) float64 {
	if b.count == 0 {
		return 0
	}
	return b.effSum / float64(b.count)
}
