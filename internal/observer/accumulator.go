package observer

import (
	"sort"

	"ctxstrat/internal/events"
	"ctxstrat/internal/strategy"
)

// bucketKey groups sessions by attributed model and task class.
type bucketKey struct {
	Model     string
	TaskClass string
}

// counters is the raw per-bucket tally. All fields only ever increase
// during a run; the whole map is discarded when the run ends.
type counters struct {
	Plans             int64
	FloorUnmet        int64
	Dropped           int64
	InjectedTokensSum float64
	InjectedCount     int64
	ZoneMoves         int64
	ZoneMoveTokens    float64
	VerificationTotal int64
	VerificationPass  int64
}

// accumulator maps bucket keys to counters. Buckets are created zeroed on
// the first event that actually counts toward them, so a session whose
// events all fall outside the window (or are all noise) leaves no trace.
type accumulator struct {
	buckets map[bucketKey]*counters
}

func newAccumulator() *accumulator {
	return &accumulator{buckets: make(map[bucketKey]*counters)}
}

func (a *accumulator) bucket(key bucketKey) *counters {
	c, ok := a.buckets[key]
	if !ok {
		c = &counters{}
		a.buckets[key] = c
	}
	return c
}

// observe applies one event's counter effects to the session's bucket.
// Events with a missing or non-numeric timestamp, or older than cutoffMS,
// are ignored. Duplicate-content injection drops count as nothing at all.
func (a *accumulator) observe(key bucketKey, ev events.Event, cutoffMS int64) {
	if !ev.InWindow(cutoffMS) {
		return
	}

	switch ev.Type {
	case events.TypeContextInjected:
		c := a.bucket(key)
		c.Plans++
		c.InjectedCount++
		c.InjectedTokensSum += ev.Number("sourceTokens")

	case events.TypeInjectionDropped:
		if ev.String("reason") == events.DropReasonDuplicate {
			return
		}
		c := a.bucket(key)
		c.Plans++
		c.Dropped++

	case events.TypeFloorUnmet:
		a.bucket(key).FloorUnmet++

	case events.TypeZoneAdapted:
		c := a.bucket(key)
		c.ZoneMoves++
		c.ZoneMoveTokens += ev.Number("movedTokens")

	case events.TypeVerificationOutcome:
		c := a.bucket(key)
		c.VerificationTotal++
		if ev.String("outcome") == "pass" {
			c.VerificationPass++
		}
	}
}

// sortedKeys returns the bucket keys ordered by model, then task class,
// for deterministic report output.
func (a *accumulator) sortedKeys() []bucketKey {
	keys := make([]bucketKey, 0, len(a.buckets))
	for key := range a.buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Model != keys[j].Model {
			return keys[i].Model < keys[j].Model
		}
		return keys[i].TaskClass < keys[j].TaskClass
	})
	return keys
}

// summarize derives the normalized rates for one bucket. Every
// denominator floors at 1, so near-empty buckets yield zeros instead of
// division errors or exaggerated rates.
func summarize(key bucketKey, c *counters) strategy.BucketSummary {
	plans := max(1, float64(c.Plans))
	injected := max(1, float64(c.InjectedCount))
	verifications := max(1, float64(c.VerificationTotal))

	droppedRate := float64(c.Dropped) / plans
	passRate := float64(c.VerificationPass) / verifications

	return strategy.BucketSummary{
		Model:                   key.Model,
		TaskClass:               key.TaskClass,
		FloorUnmetRate:          float64(c.FloorUnmet) / plans,
		InjectionDroppedRate:    droppedRate,
		AvgInjectionTokens:      c.InjectedTokensSum / injected,
		ZoneAdaptationMoveRatio: c.ZoneMoveTokens / max(1, c.InjectedTokensSum),
		VerificationPassRate:    passRate,
		QualityProxy:            passRate * (1 - droppedRate),
		Samples: strategy.Samples{
			Plans:        int(c.Plans),
			Verification: int(c.VerificationTotal),
		},
	}
}
