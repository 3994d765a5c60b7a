// Package audio implements the §4.11 audio trigger binder: bus concurrency
// and cooldown enforcement over a chronologically ordered stream of cue
// triggers, plus the dropped/suppressed counters and ledger consumed by
// validation.
package audio

import "groundtrack/engine/models"

type activeCue struct {
	trigger models.AudioTrigger
	endsAt  models.GET
}

// Binder enforces bus concurrency and cooldown windows over emitted cues.
type Binder struct {
	cfg models.AudioConfig

	busLimit  map[string]int
	active    map[string][]activeCue // keyed by bus id
	lastFired map[string]models.GET  // keyed by cue id
	ledger    []models.AudioTrigger

	dropped    int
	suppressed int
}

func New(cfg models.AudioConfig) *Binder {
	b := &Binder{
		cfg:       cfg,
		busLimit:  make(map[string]int),
		active:    make(map[string][]activeCue),
		lastFired: make(map[string]models.GET),
	}
	for _, bus := range cfg.Buses {
		b.busLimit[bus.ID] = bus.MaxConcurrent
	}
	return b
}

func (b *Binder) cooldownFor(cueID, category string) float64 {
	var categoryMatch float64
	for _, c := range b.cfg.Cooldowns {
		if c.CueID != "" && c.CueID == cueID {
			return c.CooldownSeconds
		}
		if c.Category != "" && c.Category == category {
			categoryMatch = c.CooldownSeconds
		}
	}
	return categoryMatch
}

// Emit attempts to fire the given trigger at its TriggeredAt GET. It is
// suppressed if still within its cue/category cooldown window, dropped if
// its bus is already at capacity, and otherwise admitted and durationSeconds
// later removed from the bus's active set.
func (b *Binder) Emit(trigger models.AudioTrigger, durationSeconds float64) bool {
	if cooldown := b.cooldownFor(trigger.CueID, trigger.Category); cooldown > 0 {
		if last, ok := b.lastFired[trigger.CueID]; ok {
			if float64(trigger.TriggeredAt.Sub(last)) < cooldown {
				b.suppressed++
				return false
			}
		}
	}

	limit := b.busLimit[trigger.BusID]
	bus := b.active[trigger.BusID]
	if limit > 0 && len(bus) >= limit {
		if !b.preempt(trigger.BusID, trigger.Priority) {
			b.dropped++
			return false
		}
		bus = b.active[trigger.BusID]
	}

	b.active[trigger.BusID] = append(bus, activeCue{trigger: trigger, endsAt: trigger.TriggeredAt.Add(int64(durationSeconds))})
	b.lastFired[trigger.CueID] = trigger.TriggeredAt
	b.ledger = append(b.ledger, trigger)
	return true
}

// preempt evicts the lowest-priority occupant of bus if it is strictly
// lower priority than the incoming trigger, per §4.11 "Priority determines
// pre-emption on a bus".
func (b *Binder) preempt(bus string, incomingPriority int) bool {
	occupants := b.active[bus]
	lowestIdx := -1
	for i, c := range occupants {
		if lowestIdx == -1 || c.trigger.Priority < occupants[lowestIdx].trigger.Priority {
			lowestIdx = i
		}
	}
	if lowestIdx == -1 || occupants[lowestIdx].trigger.Priority >= incomingPriority {
		return false
	}
	b.active[bus] = append(occupants[:lowestIdx], occupants[lowestIdx+1:]...)
	return true
}

// Tick releases any active cue whose duration has elapsed, freeing its bus
// slot for the next admitted trigger.
func (b *Binder) Tick(now models.GET) {
	for bus, occupants := range b.active {
		kept := occupants[:0]
		for _, c := range occupants {
			if now < c.endsAt {
				kept = append(kept, c)
			}
		}
		b.active[bus] = kept
	}
}

// Stats holds the dropped/suppressed counters and the ledger length, read
// by the engine for the Frame's audio view.
type Stats struct {
	Dropped    int
	Suppressed int
	Ledger     int
}

func (b *Binder) Stats() Stats {
	return Stats{Dropped: b.dropped, Suppressed: b.suppressed, Ledger: len(b.ledger)}
}

// Ledger returns every admitted trigger in emission order, for validation
// tooling.
func (b *Binder) Ledger() []models.AudioTrigger {
	return append([]models.AudioTrigger(nil), b.ledger...)
}
