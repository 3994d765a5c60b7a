package models

// AudioBusDef configures one audio bus's concurrency limit (§4.11 "Bus
// concurrency ... enforced by the binder").
type AudioBusDef struct {
	ID              string `json:"id" yaml:"id"`
	MaxConcurrent   int    `json:"maxConcurrent" yaml:"maxConcurrent"`
}

// AudioCooldownDef configures the suppression window for one cue id or
// category; CueID takes precedence over Category when both could match.
type AudioCooldownDef struct {
	CueID             string  `json:"cueId,omitempty" yaml:"cueId,omitempty"`
	Category          string  `json:"category,omitempty" yaml:"category,omitempty"`
	CooldownSeconds   float64 `json:"cooldownSeconds" yaml:"cooldownSeconds"`
}

// AudioConfig is the mission-level audio trigger configuration consumed by
// the audio trigger binder (§4.11).
type AudioConfig struct {
	Buses     []AudioBusDef      `json:"buses" yaml:"buses"`
	Cooldowns []AudioCooldownDef `json:"cooldowns,omitempty" yaml:"cooldowns,omitempty"`
}

// AudioTrigger is one emitted cue record, as defined by §4.11's
// `{cue_id, severity, bus_id, source_type, source_id, triggered_at_seconds, metadata}`.
type AudioTrigger struct {
	CueID           string            `json:"cueId"`
	Severity        AlertLevel        `json:"severity"`
	BusID           string            `json:"busId"`
	Category        string            `json:"category,omitempty"`
	SourceType      string            `json:"sourceType"`
	SourceID        string            `json:"sourceId"`
	Priority        int               `json:"priority"`
	TriggeredAt     GET               `json:"triggeredAtSeconds"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
