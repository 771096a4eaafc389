package service

import (
	"math"
	"sort"

	"github.com/yourname/sleepwell/internal"
)

// Recommended nightly sleep used for the sleep debt figure.
const targetSleepMinutes = 8 * 60

// AverageSleepHours is the mean duration in hours, rounded to one decimal.
func AverageSleepHours(logs []internal.SleepLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	total := 0
	for _, l := range logs {
		total += l.DurationMinutes
	}
	return roundHalfUp(float64(total)/float64(len(logs))/60, 1)
}

// SleepDebtHours is hours short of eight per night across all logs. A
// negative value means surplus.
func SleepDebtHours(logs []internal.SleepLog) float64 {
	total := 0
	for _, l := range logs {
		total += l.DurationMinutes
	}
	return roundHalfUp(float64(len(logs)*targetSleepMinutes-total)/60, 1)
}

func AverageQuality(logs []internal.SleepLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	total := 0
	for _, l := range logs {
		total += l.Quality
	}
	return float64(total) / float64(len(logs))
}

// bedtimeMinutes is the bedtime as minutes after midnight in the offset it
// was recorded with, pushed past 24h when before noon so that 23:30 and
// 00:30 sit an hour apart.
func bedtimeMinutes(l internal.SleepLog) float64 {
	m := l.Bedtime.Hour()*60 + l.Bedtime.Minute()
	if m < 12*60 {
		m += 24 * 60
	}
	return float64(m)
}

// BedtimeConsistency is the population standard deviation of bedtimes in
// whole minutes; 0 with fewer than two logs.
func BedtimeConsistency(logs []internal.SleepLog) int {
	if len(logs) < 2 {
		return 0
	}
	mean := 0.0
	for _, l := range logs {
		mean += bedtimeMinutes(l)
	}
	mean /= float64(len(logs))

	variance := 0.0
	for _, l := range logs {
		d := bedtimeMinutes(l) - mean
		variance += d * d
	}
	variance /= float64(len(logs))
	return int(roundHalfUp(math.Sqrt(variance), 0))
}

// AverageBedtime returns the mean bedtime as hour and minute of day.
func AverageBedtime(logs []internal.SleepLog) (hour, minute int) {
	if len(logs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, l := range logs {
		sum += bedtimeMinutes(l)
	}
	m := int(roundHalfUp(sum/float64(len(logs)), 0)) % (24 * 60)
	return m / 60, m % 60
}

type ActivityCorrelation struct {
	Activity   string  `json:"activity"`
	AvgQuality float64 `json:"avg_quality"`
	Count      int     `json:"count"`
}

// minCorrelationSamples is how many nights an activity needs before it is reported.
const minCorrelationSamples = 3

// ActivityCorrelations pairs each diary entry with the sleep log of the
// same date and averages sleep quality per activity. Results are sorted
// best first, ties by name.
func ActivityCorrelations(logs []internal.SleepLog, entries []internal.DiaryEntry) []ActivityCorrelation {
	qualityByDate := make(map[string]int, len(logs))
	for _, l := range logs {
		qualityByDate[l.Date] = l.Quality
	}

	type acc struct{ total, count int }
	byActivity := map[string]*acc{}
	for _, e := range entries {
		q, ok := qualityByDate[e.Date]
		if !ok {
			continue
		}
		for _, a := range e.Activities {
			if byActivity[a] == nil {
				byActivity[a] = &acc{}
			}
			byActivity[a].total += q
			byActivity[a].count++
		}
	}

	out := make([]ActivityCorrelation, 0, len(byActivity))
	for a, v := range byActivity {
		if v.count < minCorrelationSamples {
			continue
		}
		out = append(out, ActivityCorrelation{
			Activity:   a,
			AvgQuality: roundHalfUp(float64(v.total)/float64(v.count), 1),
			Count:      v.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgQuality != out[j].AvgQuality {
			return out[i].AvgQuality > out[j].AvgQuality
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}

// BestAndWorst returns up to three top activities and up to three bottom
// ones, the latter worst first. The two may overlap on short lists.
func BestAndWorst(c []ActivityCorrelation) (best, worst []ActivityCorrelation) {
	n := len(c)
	best = c[:min(3, n)]
	tail := c[n-min(3, n):]
	worst = make([]ActivityCorrelation, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		worst = append(worst, tail[i])
	}
	return best, worst
}

func averageMoodEnergy(entries []internal.DiaryEntry) (mood, energy float64) {
	if len(entries) == 0 {
		return 0, 0
	}
	for _, e := range entries {
		mood += float64(e.Mood)
		energy += float64(e.Energy)
	}
	n := float64(len(entries))
	return mood / n, energy / n
}
