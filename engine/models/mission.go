package models

import "time"

// EventStatus is the lifecycle of an Event (§3): pending -> armed -> active ->
// {complete, failed}.
type EventStatus string

const (
	EventPending  EventStatus = "pending"
	EventArmed    EventStatus = "armed"
	EventActive   EventStatus = "active"
	EventComplete EventStatus = "complete"
	EventFailed   EventStatus = "failed"
)

// Comparator is the relational operator used by a resource Predicate.
type Comparator string

const (
	CmpLT Comparator = "<"
	CmpLE Comparator = "<="
	CmpGT Comparator = ">"
	CmpGE Comparator = ">="
	CmpEQ Comparator = "=="
)

// Predicate is one term of an event or checklist-step precondition. Exactly
// one of the two shapes is populated: an event-status check (EventID +
// RequiredStatus) or a resource-channel comparison (Channel + Comparator +
// Threshold).
type Predicate struct {
	EventID       string      `json:"eventId,omitempty" yaml:"eventId,omitempty"`
	RequiredState EventStatus `json:"requiredState,omitempty" yaml:"requiredState,omitempty"`

	Channel    string     `json:"channel,omitempty" yaml:"channel,omitempty"`
	Comparator Comparator `json:"comparator,omitempty" yaml:"comparator,omitempty"`
	Threshold  float64    `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// IsEventPredicate reports whether p checks a prior event's status rather
// than a resource channel.
func (p Predicate) IsEventPredicate() bool { return p.EventID != "" }

// Precondition is the AND of its Predicates; a zero-value Precondition (no
// predicates) is always satisfied.
type Precondition struct {
	All []Predicate `json:"all,omitempty" yaml:"all,omitempty"`
}

// ResourceDelta is a discrete adjustment applied to a named resource channel,
// sourced from an event, autopilot program, manual action, or failure
// taxonomy entry.
type ResourceDelta struct {
	Channel string  `json:"channel" yaml:"channel"`
	Value   float64 `json:"value" yaml:"value"`
	Source  string  `json:"source,omitempty" yaml:"source,omitempty"`
}

// EventDef is the mission-data definition of a schedulable event (§3 Event).
type EventDef struct {
	ID                     string       `json:"id" yaml:"id"`
	Phase                  string       `json:"phase" yaml:"phase"`
	PADID                  string       `json:"padId,omitempty" yaml:"padId,omitempty"`
	OpensAt                GET          `json:"opensAt" yaml:"opensAt"`
	ClosesAt               GET          `json:"closesAt" yaml:"closesAt"`
	Precondition           Precondition `json:"precondition,omitempty" yaml:"precondition,omitempty"`
	ExpectedDurationSecs   int64        `json:"expectedDurationSeconds,omitempty" yaml:"expectedDurationSeconds,omitempty"`
	AutopilotID            string       `json:"autopilotId,omitempty" yaml:"autopilotId,omitempty"`
	ChecklistID            string       `json:"checklistId,omitempty" yaml:"checklistId,omitempty"`
	Mandatory              bool         `json:"mandatory" yaml:"mandatory"`
	FailureBindings        []string     `json:"failureBindings,omitempty" yaml:"failureBindings,omitempty"`
}

// ChecklistStepDef is one ordered step of a Checklist (§3 Checklist).
type ChecklistStepDef struct {
	ID             string          `json:"id" yaml:"id"`
	Order          int             `json:"order" yaml:"order"`
	Callout        string          `json:"callout" yaml:"callout"`
	PanelControl   string          `json:"panelControl,omitempty" yaml:"panelControl,omitempty"`
	DSKYMacroID    string          `json:"dskyMacroId,omitempty" yaml:"dskyMacroId,omitempty"`
	ManualOnly     bool            `json:"manualOnly,omitempty" yaml:"manualOnly,omitempty"`
	Prerequisites  []Predicate     `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	SideEffects    []ResourceDelta `json:"sideEffects,omitempty" yaml:"sideEffects,omitempty"`
	ClearsFailure  string          `json:"clearsFailure,omitempty" yaml:"clearsFailure,omitempty"`
}

// ChecklistDef is the ordered step sequence plus auto-advance policy for one
// checklist (§3 Checklist, §4.5).
type ChecklistDef struct {
	ID                  string             `json:"id" yaml:"id"`
	Title               string             `json:"title" yaml:"title"`
	Steps               []ChecklistStepDef `json:"steps" yaml:"steps"`
	AutoAdvance         *bool              `json:"autoAdvance,omitempty" yaml:"autoAdvance,omitempty"`
	StepDurationSeconds int64              `json:"stepDurationSeconds,omitempty" yaml:"stepDurationSeconds,omitempty"`
}

// PADParameters holds the precomputed burn/entry parameters attached to an
// event's PAD. Strict numeric fields per the Design Notes: parsed once at
// the mission-data boundary, never re-parsed defensively downstream.
type PADParameters struct {
	TIG                 GET     `json:"tig" yaml:"tig"`
	DeltaVMPS           float64 `json:"deltaVMps" yaml:"deltaVMps"`
	BurnDurationSeconds float64 `json:"burnDurationSeconds" yaml:"burnDurationSeconds"`
	Attitude            string  `json:"attitude,omitempty" yaml:"attitude,omitempty"`
	WeightKg            float64 `json:"weightKg,omitempty" yaml:"weightKg,omitempty"`
	Notes               string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// PADDef is a preliminary advisory data block referenced by EventDef.PADID.
type PADDef struct {
	ID         string        `json:"id" yaml:"id"`
	Parameters PADParameters `json:"parameters" yaml:"parameters"`
}

// AutopilotCommandKind enumerates the timeline command shapes of §4.4.
type AutopilotCommandKind string

const (
	CmdUllage    AutopilotCommandKind = "ullage"
	CmdThrottle  AutopilotCommandKind = "throttle"
	CmdDSKYMacro AutopilotCommandKind = "dsky_macro"
	CmdRCSPulse  AutopilotCommandKind = "rcs_pulse"
	CmdComplete  AutopilotCommandKind = "complete"
)

// AutopilotCommand is one entry of an autopilot program's command timeline.
type AutopilotCommand struct {
	Kind            AutopilotCommandKind `json:"kind" yaml:"kind"`
	DurationSeconds float64              `json:"durationSeconds,omitempty" yaml:"durationSeconds,omitempty"`
	Setpoint        float64              `json:"setpoint,omitempty" yaml:"setpoint,omitempty"`
	RampSeconds     float64              `json:"rampSeconds,omitempty" yaml:"rampSeconds,omitempty"`
	MacroID         string               `json:"macroId,omitempty" yaml:"macroId,omitempty"`
	ClusterID       string               `json:"clusterId,omitempty" yaml:"clusterId,omitempty"`
	Pulses          int                  `json:"pulses,omitempty" yaml:"pulses,omitempty"`
}

// AutopilotProgramDef is the mission-data definition of an autopilot program
// (§3 Autopilot program, §4.4).
type AutopilotProgramDef struct {
	ID               string             `json:"id" yaml:"id"`
	Stage            string             `json:"stage" yaml:"stage"`
	MassFlowKgPerSec float64            `json:"massFlowKgPerSec" yaml:"massFlowKgPerSec"`
	Commands         []AutopilotCommand `json:"commands" yaml:"commands"`
}

// FailureClassification mirrors the taxonomy's severity tag (S4's "Hard").
type FailureClassification string

const (
	ClassHard       FailureClassification = "Hard"
	ClassSoft       FailureClassification = "Soft"
	ClassRecoverable FailureClassification = "Recoverable"
	ClassFatal      FailureClassification = "Fatal"
)

// FailureDef is one entry of the mission failure taxonomy (§4.2 "Failure
// semantics").
type FailureDef struct {
	ID               string                `json:"id" yaml:"id"`
	Classification   FailureClassification `json:"classification" yaml:"classification"`
	ImmediateEffect  []ResourceDelta       `json:"immediateEffect,omitempty" yaml:"immediateEffect,omitempty"`
	OngoingPenalty   []ResourceDelta       `json:"ongoingPenalty,omitempty" yaml:"ongoingPenalty,omitempty"`
	RecoveryActionID string                `json:"recoveryActionId,omitempty" yaml:"recoveryActionId,omitempty"`
	Fatal            bool                  `json:"fatal,omitempty" yaml:"fatal,omitempty"`
}

// CommsPassDef schedules one communications pass window (§3 "Communications
// pass state machine").
type CommsPassDef struct {
	ID              string  `json:"id" yaml:"id"`
	OpensAt         GET     `json:"opensAt" yaml:"opensAt"`
	ClosesAt        GET     `json:"closesAt" yaml:"closesAt"`
	HandoverMinutes float64 `json:"handoverMinutes" yaml:"handoverMinutes"`
	CueOnAcquire    string  `json:"cueOnAcquire,omitempty" yaml:"cueOnAcquire,omitempty"`
	CueOnLoss       string  `json:"cueOnLoss,omitempty" yaml:"cueOnLoss,omitempty"`
}

// DockingGateDef is one ordered checkpoint of the docking sequence (§3
// Docking gate, §4.7).
type DockingGateDef struct {
	ID                 string  `json:"id" yaml:"id"`
	RangeStartMeters   float64 `json:"rangeStartMeters" yaml:"rangeStartMeters"`
	RangeEndMeters     float64 `json:"rangeEndMeters" yaml:"rangeEndMeters"`
	TargetClosingRate  float64 `json:"targetClosingRateMps" yaml:"targetClosingRateMps"`
	ToleranceMps       float64 `json:"toleranceMps" yaml:"toleranceMps"`
	ActivationProgress float64 `json:"activationProgress" yaml:"activationProgress"`
	CompletionProgress float64 `json:"completionProgress" yaml:"completionProgress"`
	ChecklistID        string  `json:"checklistId,omitempty" yaml:"checklistId,omitempty"`
}

// DockingConfig binds the docking context to its governing event and tunes
// the RCS duty-cycle decay window (§4.7).
type DockingConfig struct {
	ActivationEventID      string           `json:"activationEventId" yaml:"activationEventId"`
	DutyCycleWindowSeconds float64          `json:"dutyCycleWindowSeconds,omitempty" yaml:"dutyCycleWindowSeconds,omitempty"`
	Gates                  []DockingGateDef `json:"gates" yaml:"gates"`
}

// CorridorOffsetDef keys a corridor-angle offset to an entry-timeline event's
// status (§4.8 "corridor angle (target ± selected offset keyed by
// entry-phase event status)").
type CorridorOffsetDef struct {
	EventID     string      `json:"eventId" yaml:"eventId"`
	Status      EventStatus `json:"status" yaml:"status"`
	OffsetDeg   float64     `json:"offsetDeg" yaml:"offsetDeg"`
}

// GLoadPointDef attributes a peak g-load to an active event (§4.8).
type GLoadPointDef struct {
	EventID string  `json:"eventId" yaml:"eventId"`
	PeakG   float64 `json:"peakG" yaml:"peakG"`
}

// RecoveryTimelineEntryDef is one step of the post-splashdown recovery
// timeline, driven by a companion event or a GET offset from it (§4.8).
type RecoveryTimelineEntryDef struct {
	ID             string `json:"id" yaml:"id"`
	Label          string `json:"label" yaml:"label"`
	TriggerEventID string `json:"triggerEventId" yaml:"triggerEventId"`
	OffsetSeconds  int64  `json:"offsetSeconds" yaml:"offsetSeconds"`
}

// EntryTimelineDef configures the entry/recovery monitor (§4.8).
type EntryTimelineDef struct {
	CorridorTargetDeg float64                    `json:"corridorTargetDeg" yaml:"corridorTargetDeg"`
	CorridorOffsets   []CorridorOffsetDef        `json:"corridorOffsets,omitempty" yaml:"corridorOffsets,omitempty"`
	BlackoutStart     GET                        `json:"blackoutStart" yaml:"blackoutStart"`
	BlackoutEnd       GET                        `json:"blackoutEnd" yaml:"blackoutEnd"`
	GLoadProfile      []GLoadPointDef            `json:"gLoadProfile,omitempty" yaml:"gLoadProfile,omitempty"`
	RecoveryTimeline  []RecoveryTimelineEntryDef `json:"recoveryTimeline,omitempty" yaml:"recoveryTimeline,omitempty"`
}

// TankBudget is the initial/reserve budget for one propellant or consumable
// tank (§3 "Invariant: 0 ≤ current_kg ≤ initial_kg").
type TankBudget struct {
	InitialKg float64 `json:"initialKg" yaml:"initialKg"`
	ReserveKg float64 `json:"reserveKg,omitempty" yaml:"reserveKg,omitempty"`
}

// PowerProfile configures the fuel-cell load/output model consumed per tick
// by the resource system (§4.3 "fuel-cell load drawn from configured
// profile indexed by mission phase").
type PowerProfile struct {
	OutputKw      float64            `json:"outputKw" yaml:"outputKw"`
	LoadByPhaseKw map[string]float64 `json:"loadByPhaseKw" yaml:"loadByPhaseKw"`
}

// AlertThresholds configures the caution/warning bands of §4.3 "Alert
// derivation". All fields are configuration, never hard-coded.
type AlertThresholds struct {
	PowerMarginCautionPct  float64 `json:"powerMarginCautionPct" yaml:"powerMarginCautionPct"`
	PowerMarginWarningPct  float64 `json:"powerMarginWarningPct" yaml:"powerMarginWarningPct"`
	PropellantCautionPct   float64 `json:"propellantCautionPct" yaml:"propellantCautionPct"`
	PropellantWarningPct   float64 `json:"propellantWarningPct" yaml:"propellantWarningPct"`
	CryoBoilOffCautionPct  float64 `json:"cryoBoilOffCautionPctPerHour" yaml:"cryoBoilOffCautionPctPerHour"`
	CryoBoilOffWarningPct  float64 `json:"cryoBoilOffWarningPctPerHour" yaml:"cryoBoilOffWarningPctPerHour"`
}

// DefaultAlertThresholds returns the §4.3 default caution/warning bands.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		PowerMarginCautionPct: 35,
		PowerMarginWarningPct: 20,
		PropellantCautionPct:  35,
		PropellantWarningPct:  15,
		CryoBoilOffCautionPct: 1.5,
		CryoBoilOffWarningPct: 2.5,
	}
}

// HysteresisBand names the reset-below band a resource failure must fall
// under, after crossing its trigger threshold, before it may be re-armed
// (Open Question in §9: hysteresis bands are not uniformly specified in the
// source; this is the named config block the target introduces).
type HysteresisBand struct {
	TriggerThreshold float64 `json:"triggerThreshold" yaml:"triggerThreshold"`
	ResetThreshold   float64 `json:"resetThreshold" yaml:"resetThreshold"`
}

// ThermalModel drives the thermal-state tag and PTC-eligibility check
// consumed by the resource system and scoring aggregator.
type ThermalModel struct {
	NominalTag        string  `json:"nominalTag" yaml:"nominalTag"`
	ViolationTag      string  `json:"violationTag" yaml:"violationTag"`
	PTCRollRatePerMin float64 `json:"ptcRollRatePerMin,omitempty" yaml:"ptcRollRatePerMin,omitempty"`
}

// LifeSupportBudget tracks O2/H2O/LiOH/CO2 consumables (§3 Resource state).
type LifeSupportBudget struct {
	O2InitialKg        float64 `json:"o2InitialKg" yaml:"o2InitialKg"`
	H2OInitialKg       float64 `json:"h2oInitialKg" yaml:"h2oInitialKg"`
	LiOHInitialKg      float64 `json:"liOhInitialKg" yaml:"liOhInitialKg"`
	CO2ScrubCapacityKg float64 `json:"co2ScrubCapacityKg" yaml:"co2ScrubCapacityKg"`
	O2ConsumptionKgHr  float64 `json:"o2ConsumptionKgPerHour" yaml:"o2ConsumptionKgPerHour"`
	H2OConsumptionKgHr float64 `json:"h2oConsumptionKgPerHour" yaml:"h2oConsumptionKgPerHour"`
}

// ConsumablesBudget aggregates every resource budget and model consumed by
// the resource system (§3 Resource state, §4.3).
type ConsumablesBudget struct {
	Tanks               map[string]TankBudget `json:"tanks" yaml:"tanks"`
	DeltaVBaseByStage   map[string]float64    `json:"deltaVBaseByStage" yaml:"deltaVBaseByStage"`
	Power               PowerProfile          `json:"power" yaml:"power"`
	CryoBoilOffPctPerHr map[string]float64    `json:"cryoBoilOffPctPerHour" yaml:"cryoBoilOffPctPerHour"`
	Thermal             ThermalModel          `json:"thermal" yaml:"thermal"`
	LifeSupport         LifeSupportBudget     `json:"lifeSupport" yaml:"lifeSupport"`
	Alerts              AlertThresholds       `json:"alerts" yaml:"alerts"`
	Hysteresis          map[string]HysteresisBand `json:"hysteresis,omitempty" yaml:"hysteresis,omitempty"`
}

// UnlockRule names a small predicate over a completed run, evaluated by the
// progression service (SPEC_FULL "Supplemented features").
type UnlockRule struct {
	ID            string `json:"id" yaml:"id"`
	MinGrade      string `json:"minGrade,omitempty" yaml:"minGrade,omitempty"`
	MinScore      float64 `json:"minScore,omitempty" yaml:"minScore,omitempty"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WorkspacePreset is a UI layout/scoring preset published in mission data;
// its presence gates whether the UI frame builder emits the corresponding
// optional summary key (§4.10).
type WorkspacePreset struct {
	ID                 string       `json:"id" yaml:"id"`
	DockingSummary     bool         `json:"dockingSummary" yaml:"dockingSummary"`
	EntrySummary       bool         `json:"entrySummary" yaml:"entrySummary"`
	ScoringWeights     ScoreWeights `json:"scoringWeights,omitempty" yaml:"scoringWeights,omitempty"`
	UnlockRules        []UnlockRule `json:"unlockRules,omitempty" yaml:"unlockRules,omitempty"`
}

// ScoreWeights configures the §4.9 weighted grade breakdown.
type ScoreWeights struct {
	Events     float64 `json:"events" yaml:"events"`
	Resources  float64 `json:"resources" yaml:"resources"`
	Faults     float64 `json:"faults" yaml:"faults"`
	Manual     float64 `json:"manual" yaml:"manual"`
	ManualBonusWeight float64 `json:"manualBonusWeight" yaml:"manualBonusWeight"`
}

// DefaultScoreWeights returns the §4.9 default weighted breakdown.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Events: 0.4, Resources: 0.3, Faults: 0.2, Manual: 0.1, ManualBonusWeight: 5}
}

// MissionData is the abstract, read-only-on-startup value the engine
// consumes (§6 "Mission data"). The loader/validator that produces it from
// disk is an external collaborator; the engine treats this struct as given.
type MissionData struct {
	ID                string                 `json:"id" yaml:"id"`
	Title             string                 `json:"title" yaml:"title"`
	Events            []EventDef             `json:"events" yaml:"events"`
	AutopilotPrograms []AutopilotProgramDef  `json:"autopilotPrograms" yaml:"autopilotPrograms"`
	Checklists        []ChecklistDef         `json:"checklists" yaml:"checklists"`
	PADs              []PADDef               `json:"pads" yaml:"pads"`
	FailureTaxonomy   []FailureDef           `json:"failureTaxonomy" yaml:"failureTaxonomy"`
	CommsSchedule     []CommsPassDef         `json:"commsSchedule" yaml:"commsSchedule"`
	Docking           *DockingConfig         `json:"docking,omitempty" yaml:"docking,omitempty"`
	EntryTimeline     *EntryTimelineDef      `json:"entryTimeline,omitempty" yaml:"entryTimeline,omitempty"`
	Consumables       ConsumablesBudget      `json:"consumables" yaml:"consumables"`
	Workspace         *WorkspacePreset       `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	Audio             AudioConfig            `json:"audio,omitempty" yaml:"audio,omitempty"`
	CreatedAt         time.Time              `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}
