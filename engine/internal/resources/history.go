package resources

import "groundtrack/engine/models"

// HistorySample is one recorded {seconds, value} tuple for a resource
// channel (§4.3 "History").
type HistorySample struct {
	Seconds int64   `json:"seconds"`
	Value   float64 `json:"value"`
}

// HistorySnapshot is the per-channel ring-buffer contents, or a disabled
// marker when history sampling is off (§4.3 "When disabled,
// history_snapshot() returns {meta: {enabled: false}}").
type HistorySnapshot struct {
	Enabled  bool                       `json:"enabled"`
	Channels map[string][]HistorySample `json:"channels,omitempty"`
}

type ringBuffer struct {
	samples    []HistorySample
	maxSamples int
}

func newRingBuffer(max int) *ringBuffer {
	if max <= 0 {
		max = 1
	}
	return &ringBuffer{maxSamples: max}
}

func (r *ringBuffer) add(s HistorySample) {
	r.samples = append(r.samples, s)
	if len(r.samples) > r.maxSamples {
		r.samples = r.samples[len(r.samples)-r.maxSamples:]
	}
}

// sampleHistory records one sample per tracked channel every
// HistorySampleIntervalS seconds of simulated GET.
func (m *Manager) sampleHistory(now models.GET, dt float64) {
	m.elapsed += dt
	if m.elapsed < m.cfg.HistorySampleIntervalS {
		return
	}
	m.elapsed = 0
	snap := m.Snapshot()
	for channel, view := range snap.Channels {
		rb, ok := m.history[channel]
		if !ok {
			rb = newRingBuffer(m.cfg.HistoryMaxSamples)
			m.history[channel] = rb
		}
		rb.add(HistorySample{Seconds: now.Seconds(), Value: view.Value})
	}
}

// HistorySnapshot returns the ring-buffer contents for every channel.
// Two consecutive calls with no intervening Tick return equal values
// (§8 property 7, idempotence).
func (m *Manager) HistorySnapshot() HistorySnapshot {
	if !m.cfg.HistoryEnabled {
		return HistorySnapshot{Enabled: false}
	}
	out := make(map[string][]HistorySample, len(m.history))
	for channel, rb := range m.history {
		cp := make([]HistorySample, len(rb.samples))
		copy(cp, rb.samples)
		out[channel] = cp
	}
	return HistorySnapshot{Enabled: true, Channels: out}
}
