// Package scoring implements the §4.9 scoring aggregator: running
// min/max/violation tracking, fault and manual-vs-auto counts, the weighted
// grade computation, and the scoring-history ring buffer with per-category
// deltas (SPEC_FULL "Scoring history deltas").
package scoring

import "groundtrack/engine/models"

// TickInputs is the per-tick read-only snapshot the engine facade hands the
// aggregator; it is assembled from every other subsystem's own Snapshot()
// or Stats(), never mutated by the aggregator.
type TickInputs struct {
	PowerMarginPct    float64
	DeltaVMarginByTag map[string]float64
	ThermalViolation  bool
	PropellantUsedKg  map[string]float64 // present kg per tank, as reported by the resource system; usage is first reading minus latest
	EventsCompleted   int
	EventsFailed      int
	EventsMissed      int
	ResourceFailures  []string // ids active this tick
	ManualStepCount   int
	AutoStepCount     int
}

// Aggregator accumulates scoring state across the run.
type Aggregator struct {
	weights models.ScoreWeights

	havePowerSample bool
	powerMin        float64
	powerMax        float64

	deltaVMin map[string]float64
	deltaVMax map[string]float64

	thermalViolationSeconds float64
	propellantStartKg       map[string]float64
	propellantUsedKg        map[string]float64

	eventsCompleted int
	eventsFailed    int
	eventsMissed    int

	faultCounts map[string]int

	manualSteps int
	autoSteps   int

	historyIntervalSeconds float64
	elapsed                float64
	lastTotal               float64
	trend                   []models.ScoreTrendPoint
	maxTrendSamples         int
}

func New(weights models.ScoreWeights, historyIntervalSeconds float64, maxTrendSamples int) *Aggregator {
	return &Aggregator{
		weights:                weights,
		deltaVMin:              make(map[string]float64),
		deltaVMax:              make(map[string]float64),
		propellantStartKg:      make(map[string]float64),
		propellantUsedKg:       make(map[string]float64),
		faultCounts:            make(map[string]int),
		historyIntervalSeconds: historyIntervalSeconds,
		maxTrendSamples:        maxTrendSamples,
	}
}

// Update folds one tick's readings into the running aggregates.
func (a *Aggregator) Update(now models.GET, dt float64, in TickInputs) {
	if !a.havePowerSample {
		a.powerMin, a.powerMax = in.PowerMarginPct, in.PowerMarginPct
		a.havePowerSample = true
	} else {
		a.powerMin = min(a.powerMin, in.PowerMarginPct)
		a.powerMax = max(a.powerMax, in.PowerMarginPct)
	}

	for tag, margin := range in.DeltaVMarginByTag {
		if _, ok := a.deltaVMin[tag]; !ok {
			a.deltaVMin[tag] = margin
			a.deltaVMax[tag] = margin
		} else {
			a.deltaVMin[tag] = min(a.deltaVMin[tag], margin)
			a.deltaVMax[tag] = max(a.deltaVMax[tag], margin)
		}
	}

	if in.ThermalViolation {
		a.thermalViolationSeconds += dt
	}

	for tank, used := range in.PropellantUsedKg {
		if _, ok := a.propellantStartKg[tank]; !ok {
			a.propellantStartKg[tank] = used
		}
		a.propellantUsedKg[tank] = used
	}

	a.eventsCompleted = in.EventsCompleted
	a.eventsFailed = in.EventsFailed
	a.eventsMissed = in.EventsMissed

	for _, id := range in.ResourceFailures {
		a.faultCounts[id]++
	}

	a.manualSteps = in.ManualStepCount
	a.autoSteps = in.AutoStepCount

	if a.historyIntervalSeconds > 0 {
		a.elapsed += dt
		if a.elapsed >= a.historyIntervalSeconds {
			a.elapsed = 0
			a.recordTrend(now)
		}
	}
}

func min(x, y float64) float64 {
	if x < y {
		return x
	}
	return y
}

func max(x, y float64) float64 {
	if x > y {
		return x
	}
	return y
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// eventsScore rewards completed events and penalizes failed ones; missed
// optional events count as neither (§9 Open Question: missed events are
// excluded from the denominator rather than scored as partial failures,
// since they were never mandatory).
func (a *Aggregator) eventsScore() float64 {
	total := a.eventsCompleted + a.eventsFailed
	if total == 0 {
		return 1
	}
	return clamp01(float64(a.eventsCompleted) / float64(total))
}

// resourcesScore rewards keeping every tracked margin away from its floor;
// power margin and every Δv margin contribute equally.
func (a *Aggregator) resourcesScore() float64 {
	samples := 0
	sum := 0.0
	if a.havePowerSample {
		sum += clamp01(a.powerMin / 100)
		samples++
	}
	for tag := range a.deltaVMin {
		base := a.deltaVMax[tag]
		if base <= 0 {
			continue
		}
		sum += clamp01(a.deltaVMin[tag] / base)
		samples++
	}
	if samples == 0 {
		return 1
	}
	return sum / float64(samples)
}

func (a *Aggregator) faultsScore() float64 {
	faults := a.eventsFailed
	for _, n := range a.faultCounts {
		faults += n
	}
	if faults == 0 {
		return 1
	}
	return clamp01(1.0 / float64(1+faults))
}

func (a *Aggregator) manualFraction() float64 {
	total := a.manualSteps + a.autoSteps
	if total == 0 {
		return 0
	}
	return float64(a.manualSteps) / float64(total)
}

// Grade computes the present weighted breakdown and letter grade.
func (a *Aggregator) Grade() models.ScoreView {
	breakdown := models.ScoreBreakdown{
		Events:    a.eventsScore(),
		Resources: a.resourcesScore(),
		Faults:    a.faultsScore(),
		Manual:    a.manualFraction(),
	}
	weighted := a.weights.Events*breakdown.Events +
		a.weights.Resources*breakdown.Resources +
		a.weights.Faults*breakdown.Faults +
		a.weights.Manual*breakdown.Manual
	bonus := a.weights.ManualBonusWeight * breakdown.Manual
	total := 100*weighted + bonus

	return models.ScoreView{
		Total:     total,
		Grade:     grade(total),
		Breakdown: breakdown,
		Trend:     append([]models.ScoreTrendPoint(nil), a.trend...),
	}
}

func grade(total float64) string {
	switch {
	case total >= 92:
		return "A"
	case total >= 82:
		return "B"
	case total >= 70:
		return "C"
	case total >= 55:
		return "D"
	default:
		return "F"
	}
}

func (a *Aggregator) recordTrend(now models.GET) {
	total := a.Grade().Total
	delta := total - a.lastTotal
	a.lastTotal = total
	a.trend = append(a.trend, models.ScoreTrendPoint{At: now, Total: total, Delta: delta})
	if a.maxTrendSamples > 0 && len(a.trend) > a.maxTrendSamples {
		a.trend = a.trend[len(a.trend)-a.maxTrendSamples:]
	}
}

// ThermalViolationSeconds exposes the accumulated thermal-violation time.
func (a *Aggregator) ThermalViolationSeconds() float64 { return a.thermalViolationSeconds }

// PropellantUsedKg reports cumulative propellant consumption per tank.
func (a *Aggregator) PropellantUsedKg() map[string]float64 {
	out := make(map[string]float64, len(a.propellantUsedKg))
	for tank, start := range a.propellantStartKg {
		out[tank] = start - a.propellantUsedKg[tank]
	}
	return out
}
