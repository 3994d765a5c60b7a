package models

// AlertLevel is the severity tag attached to a resource channel or a
// standalone alert entry (§4.3 "Alert derivation").
type AlertLevel string

const (
	AlertNominal AlertLevel = "nominal"
	AlertCaution AlertLevel = "caution"
	AlertWarning AlertLevel = "warning"
)

// EventView is the read-only projection of one event into a Frame.
type EventView struct {
	ID       string         `json:"id"`
	Phase    string         `json:"phase"`
	Status   EventStatus    `json:"status"`
	OpensAt  GET            `json:"opensAt"`
	ClosesAt GET            `json:"closesAt"`
	PADID    string         `json:"padId,omitempty"`
	PAD      *PADParameters `json:"pad,omitempty"`
}

// EventCounts is the lifecycle-bucket tally named by §3's literal UI frame
// shape (`events{next,upcoming,counts}`).
type EventCounts struct {
	Pending   int `json:"pending"`
	Armed     int `json:"armed"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Missed    int `json:"missed"`
	Failed    int `json:"failed"`
}

// EventsSummary groups events by lifecycle bucket for the Frame (§3 "UI
// frame": `events{next,upcoming,counts}`). Next is the event most deserving
// of crew attention: the first active event if any is active, else the
// soonest-opening upcoming event. active is carried internally (for phase
// derivation) but is not itself part of the spec's literal events shape, so
// it is not serialized.
type EventsSummary struct {
	Next     *EventView  `json:"next,omitempty"`
	Upcoming []EventView `json:"upcoming"`
	Active   []EventView `json:"-"`
	Counts   EventCounts `json:"counts"`
}

// ResourceChannelView is one named resource channel's present reading.
type ResourceChannelView struct {
	Value   float64    `json:"value"`
	Percent float64    `json:"percent"`
	Alert   AlertLevel `json:"alert"`
}

// ResourcesView is the keyed set of every tracked resource channel.
type ResourcesView struct {
	Channels map[string]ResourceChannelView `json:"channels"`
}

// ChecklistView projects the single active checklist, if any.
type ChecklistView struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ActiveStepID   string `json:"activeStepId"`
	StepsCompleted int    `json:"stepsCompleted"`
	StepsTotal     int    `json:"stepsTotal"`
	AutoAdvance    bool   `json:"autoAdvance"`
}

// AutopilotView projects the single running autopilot program, if any.
type AutopilotView struct {
	ID              string               `json:"id"`
	Stage           string               `json:"stage"`
	ElapsedSeconds  float64              `json:"elapsedSeconds"`
	CurrentCommand  AutopilotCommandKind `json:"currentCommand"`
	ThrottlePercent float64              `json:"throttlePercent"`
}

// DockingGateStatus is one gate's individually queryable runtime state (§3
// "Docking gate": pending -> active -> complete, with activated_at,
// completed_at) plus its mission-design-window deadline.
type DockingGateStatus struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	ActivatedAt     *GET    `json:"activatedAt,omitempty"`
	CompletedAt     *GET    `json:"completedAt,omitempty"`
	DeadlineSeconds float64 `json:"deadlineSeconds"`
	RangeMeters     float64 `json:"rangeMeters"`
	ClosingRateMps  float64 `json:"closingRateMps"`
	WithinTolerance bool    `json:"withinTolerance"`
}

// DockingSummary is omitted from a Frame entirely when the mission has no
// configured DockingConfig (§4.10 "absent config ⇒ omit the key").
type DockingSummary struct {
	CurrentGateID   string              `json:"currentGateId"`
	RangeMeters     float64             `json:"rangeMeters"`
	ClosingRateMps  float64             `json:"closingRateMps"`
	WithinTolerance bool                `json:"withinTolerance"`
	DutyCyclePct    float64             `json:"dutyCyclePct"`
	Gates           []DockingGateStatus `json:"gates"`
}

// RecoveryTimelineEntryView projects one recovery-timeline entry's
// lifecycle state (§4.8: pending -> acknowledged -> complete).
type RecoveryTimelineEntryView struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	AtGET  GET    `json:"atGet"`
	Status string `json:"status"`
}

// EntrySummary is omitted from a Frame entirely when the mission has no
// configured EntryTimelineDef (§4.10).
type EntrySummary struct {
	CorridorTargetDeg float64                     `json:"corridorTargetDeg"`
	CorridorOffsetDeg float64                     `json:"corridorOffsetDeg"`
	BlackoutActive    bool                        `json:"blackoutActive"`
	CurrentG          float64                     `json:"currentG"`
	RecoveryNext      *RecoveryTimelineEntryView  `json:"recoveryNext,omitempty"`
	RecoveryTimeline  []RecoveryTimelineEntryView `json:"recoveryTimeline,omitempty"`
}

// CommsView is the present communications-pass state (§3 "Communications
// pass state machine").
type CommsView struct {
	Acquired      bool   `json:"acquired"`
	CurrentPassID string `json:"currentPassId,omitempty"`
	NextPassID    string `json:"nextPassId,omitempty"`
	NextPassOpens GET    `json:"nextPassOpens,omitempty"`
}

// ScoreBreakdown is the weighted per-category score (§4.9).
type ScoreBreakdown struct {
	Events    float64 `json:"events"`
	Resources float64 `json:"resources"`
	Faults    float64 `json:"faults"`
	Manual    float64 `json:"manual"`
}

// ScoreTrendPoint is one recorded scoring-history sample (SPEC_FULL
// "Scoring history deltas").
type ScoreTrendPoint struct {
	At    GET     `json:"at"`
	Total float64 `json:"total"`
	Delta float64 `json:"delta"`
}

// ScoreView is the present scoring state plus trailing trend samples.
type ScoreView struct {
	Total      float64           `json:"total"`
	Grade      string            `json:"grade"`
	Breakdown  ScoreBreakdown    `json:"breakdown"`
	Trend      []ScoreTrendPoint `json:"trend,omitempty"`
}

// MacroEvent is one emitted DSKY macro, decomposed into verb/noun for HUD
// display (SPEC_FULL "DSKY macro ledger").
type MacroEvent struct {
	ID   string `json:"id"`
	Verb int    `json:"verb"`
	Noun int    `json:"noun"`
	At   GET    `json:"at"`
}

// AGCView exposes the tail of the DSKY macro ledger.
type AGCView struct {
	RecentMacros []MacroEvent `json:"recentMacros,omitempty"`
}

// Alert is one standalone, non-resource-channel alert surfaced in a Frame
// (e.g. a fired FailureDef not yet cleared).
type Alert struct {
	Source  string     `json:"source"`
	Level   AlertLevel `json:"level"`
	Message string     `json:"message"`
}

// ManualQueueView summarizes the manual action queue's present backlog for
// the Frame (§3 "manual action queue").
type ManualQueueView struct {
	Pending  int `json:"pending"`
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"`
}

// AudioView summarizes the audio trigger binder's present ledger.
type AudioView struct {
	Suppressed int `json:"suppressed"`
	LedgerSize int `json:"ledgerSize"`
}

// PerformanceView reports tick-loop timing, surfaced in the Frame the way a
// renderer would show a frame-rate counter.
type PerformanceView struct {
	TicksRun       int64   `json:"ticksRun"`
	FramesEmitted  int64   `json:"framesEmitted"`
	TickDurationMs float64 `json:"tickDurationMs"`
}

// LogEntryView projects one mission-log record into a Frame.
type LogEntryView struct {
	Sequence int64      `json:"sequence"`
	At       GET        `json:"at"`
	Category string     `json:"category"`
	Source   string     `json:"source"`
	Severity AlertLevel `json:"severity"`
	Message  string     `json:"message"`
}

// MissionLogSummary is the tail of the mission log plus its running
// histograms, surfaced in the Frame. Entries is named to match §8 S1's
// literal testable-property path `missionLog.entries`.
type MissionLogSummary struct {
	Entries    []LogEntryView `json:"entries,omitempty"`
	ByCategory map[string]int `json:"byCategory,omitempty"`
	BySeverity map[string]int `json:"bySeverity,omitempty"`
}

// TrajectorySummary is the output of a pluggable orbit-summary provider
// (§ Non-goals: "physics-accurate orbital propagation" is out of scope; the
// engine only consumes whatever a caller-supplied provider reports). Absent
// a provider, Frame.Trajectory is nil and the key is omitted.
type TrajectorySummary struct {
	AltitudeKm  float64 `json:"altitudeKm"`
	VelocityMps float64 `json:"velocityMps"`
	PeriapsisKm float64 `json:"periapsisKm"`
	ApoapsisKm  float64 `json:"apoapsisKm"`
}

// OrbitAlertThresholds grades TrajectorySummary.PeriapsisKm into at most one
// standalone Alert per tick: below BelowSurfaceKm a warning with source
// "orbit_periapsis_below_surface" (AlertLevel has no grade above warning),
// below WarningBelowKm a warning, below CautionBelowKm a caution.
type OrbitAlertThresholds struct {
	BelowSurfaceKm float64 `json:"belowSurfaceKm" yaml:"belowSurfaceKm"`
	WarningBelowKm float64 `json:"warningBelowKm" yaml:"warningBelowKm"`
	CautionBelowKm float64 `json:"cautionBelowKm" yaml:"cautionBelowKm"`
}

// DefaultOrbitAlertThresholds returns the engine-level default periapsis
// grading bands.
func DefaultOrbitAlertThresholds() OrbitAlertThresholds {
	return OrbitAlertThresholds{BelowSurfaceKm: 0, WarningBelowKm: 75, CautionBelowKm: 150}
}

// Frame is the immutable snapshot the engine hands to a UI renderer once
// per configured HUD interval (§3 "UI frame", §4.10).
type Frame struct {
	GET         GET                `json:"get"`
	Phase       string             `json:"phase"`
	Events      EventsSummary      `json:"events"`
	Resources   ResourcesView      `json:"resources"`
	Checklist   *ChecklistView     `json:"checklist,omitempty"`
	Autopilot   *AutopilotView     `json:"autopilot,omitempty"`
	ManualQueue ManualQueueView    `json:"manualQueue"`
	Trajectory  *TrajectorySummary `json:"trajectory,omitempty"`
	Docking     *DockingSummary    `json:"docking,omitempty"`
	Entry       *EntrySummary      `json:"entry,omitempty"`
	Comms       CommsView          `json:"comms"`
	Score       ScoreView          `json:"score"`
	AGC         AGCView            `json:"agc"`
	Audio       AudioView          `json:"audio"`
	Performance PerformanceView    `json:"performance"`
	MissionLog  MissionLogSummary  `json:"missionLog"`
	Alerts      []Alert            `json:"alerts,omitempty"`
}
