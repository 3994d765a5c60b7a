package models

// ManualActionKind enumerates the manual action tagged sum type of §3
// "Manual action": {checklist_ack, dsky_entry, panel_control, resource_delta,
// propellant_burn, workspace_event, recovery_ack}.
type ManualActionKind string

const (
	ActionChecklistAck   ManualActionKind = "checklist_ack"
	ActionDSKYEntry      ManualActionKind = "dsky_entry"
	ActionPanelControl   ManualActionKind = "panel_control"
	ActionResourceDelta  ManualActionKind = "resource_delta"
	ActionPropellantBurn ManualActionKind = "propellant_burn"
	ActionWorkspaceEvent ManualActionKind = "workspace_event"
	ActionRecoveryAck    ManualActionKind = "recovery_ack"
)

// ActionActor distinguishes a scripted/auto-generated action from one a crew
// member submitted live (§3 "Manual action").
type ActionActor string

const (
	ActorAutoCrew   ActionActor = "AUTO_CREW"
	ActorManualCrew ActionActor = "MANUAL_CREW"
)

// ManualActionStatus is the lifecycle of a queued action (§4.6).
type ManualActionStatus string

const (
	ActionQueued   ManualActionStatus = "queued"
	ActionApplied  ManualActionStatus = "applied"
	ActionRetrying ManualActionStatus = "retrying"
	ActionRejected ManualActionStatus = "rejected"
)

// ManualAction is one crew input submitted to the manual action queue. Only
// the fields relevant to Kind are populated by the submitter; the queue does
// not validate cross-field exclusivity beyond what each consumer requires.
type ManualAction struct {
	ID          string           `json:"id" yaml:"id"`
	Kind        ManualActionKind `json:"kind" yaml:"kind"`
	Actor       ActionActor      `json:"actor" yaml:"actor"`
	TriggerAt   GET              `json:"triggerAt" yaml:"triggerAt"`
	MaxRetries  int              `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`

	// ActionChecklistAck: EventID names the event the checklist is bound
	// to (checklist.Manager is keyed by event id, per §4.5's
	// acknowledge(event_id, step_number, actor)).
	StepNumber int `json:"stepNumber,omitempty" yaml:"stepNumber,omitempty"`

	// ActionDSKYEntry
	DSKYVerb  int    `json:"dskyVerb,omitempty" yaml:"dskyVerb,omitempty"`
	DSKYNoun  int    `json:"dskyNoun,omitempty" yaml:"dskyNoun,omitempty"`
	DSKYInput string `json:"dskyInput,omitempty" yaml:"dskyInput,omitempty"`

	// ActionPanelControl
	PanelControl string  `json:"panelControl,omitempty" yaml:"panelControl,omitempty"`
	Value        float64 `json:"value,omitempty" yaml:"value,omitempty"`

	// ActionResourceDelta
	Delta ResourceDelta `json:"delta,omitempty" yaml:"delta,omitempty"`

	// EventID is shared by ActionChecklistAck (the event the target
	// checklist is bound to) and ActionPropellantBurn (the event whose
	// autopilot program is started or aborted).
	EventID string `json:"eventId,omitempty" yaml:"eventId,omitempty"`

	// ActionPropellantBurn
	AutopilotID string `json:"autopilotId,omitempty" yaml:"autopilotId,omitempty"`
	Abort       bool   `json:"abort,omitempty" yaml:"abort,omitempty"`

	// ActionWorkspaceEvent: an opaque UI-layout or crew-note marker that the
	// engine only needs to log and echo back, never interpret.
	WorkspaceTag string `json:"workspaceTag,omitempty" yaml:"workspaceTag,omitempty"`

	// ActionRecoveryAck: RecoveryID names the recovery timeline entry
	// (entry.Monitor is keyed by entry id) the crew is confirming complete.
	RecoveryID string `json:"recoveryId,omitempty" yaml:"recoveryId,omitempty"`
}

// ManualActionRecord is a ManualAction annotated with its queue outcome, the
// shape persisted into the mission log and (on --record-manual-script)
// written back out as a ScriptedAction.
type ManualActionRecord struct {
	Action       ManualAction       `json:"action" yaml:"action"`
	Status       ManualActionStatus `json:"status" yaml:"status"`
	Attempts     int                `json:"attempts" yaml:"attempts"`
	ResolvedAt   GET                `json:"resolvedAt,omitempty" yaml:"resolvedAt,omitempty"`
	RejectReason string             `json:"rejectReason,omitempty" yaml:"rejectReason,omitempty"`
}

// ScriptedAction is one entry of a ManualScript: an action plus the GET tick
// at which it should be injected into the queue during a scripted run.
type ScriptedAction struct {
	At     GET          `json:"at" yaml:"at"`
	Action ManualAction `json:"action" yaml:"action"`
}

// ManualScript is an ordered, replayable set of manual actions consumed by
// --manual-script and produced by --record-manual-script (§6 CLI surface).
type ManualScript struct {
	MissionID string           `json:"missionId" yaml:"missionId"`
	Actions   []ScriptedAction `json:"actions" yaml:"actions"`
}
