// Package autopilot implements the §4.4 autopilot runner: command-timeline
// interpolation (ullage, throttle ramps, DSKY macro emission, RCS pulses),
// propellant draw against the resource system, and abort propagation.
package autopilot

import (
	"sort"

	"groundtrack/engine/models"
)

// PropellantSource is the minimal resource-system surface the runner needs,
// satisfied by *resources.Manager; an interface per the Design Notes'
// "resource-like contract" so tests can stub a rejecting source.
type PropellantSource interface {
	DrawPropellant(tank string, kg float64) bool
}

type instance struct {
	eventID    string
	programID  string
	def        models.AutopilotProgramDef
	cmdIndex   int
	cmdElapsed float64
	rampFrom   float64
	throttle   float64
	lifecycle  string // pending | ullage | burn | tail-off | complete | aborted
	rcsImpulse float64
	rcsPulses  int
	macros     []models.MacroEvent
	done       bool
	aborted    bool
	abortedReason string
}

func (i *instance) remainingSeconds() float64 {
	remaining := 0.0
	for idx := i.cmdIndex; idx < len(i.def.Commands); idx++ {
		cmd := i.def.Commands[idx]
		switch cmd.Kind {
		case models.CmdUllage, models.CmdRCSPulse:
			remaining += cmd.DurationSeconds
		case models.CmdThrottle:
			remaining += cmd.RampSeconds
		}
	}
	return remaining - i.cmdElapsed
}

// Runner owns every active autopilot program instance, one per bound event.
type Runner struct {
	resources  PropellantSource
	instances  map[string]*instance
	pendingRCS float64
}

func New(resources PropellantSource) *Runner {
	return &Runner{resources: resources, instances: make(map[string]*instance)}
}

// Start binds a program to an event; it is an error to start a second
// program on an already-active event.
func (r *Runner) Start(eventID, programID string, def models.AutopilotProgramDef) error {
	if _, exists := r.instances[eventID]; exists {
		return models.NewFault(models.KindInvariant, "autopilot", "program already active for event "+eventID, nil)
	}
	r.instances[eventID] = &instance{eventID: eventID, programID: programID, def: def, lifecycle: "pending"}
	return nil
}

// Abort force-ends a program, used when a bound event fails externally
// (e.g. a checklist precondition can no longer be met).
func (r *Runner) Abort(eventID, reason string) {
	if inst, ok := r.instances[eventID]; ok {
		inst.lifecycle = "aborted"
		inst.aborted = true
		inst.abortedReason = reason
		inst.done = true
	}
}

// IsComplete reports whether the program bound to eventID finished
// (successfully or aborted); false if no program is or was bound.
func (r *Runner) IsComplete(eventID string) bool {
	inst, ok := r.instances[eventID]
	return ok && inst.done
}

// Aborted reports whether the program bound to eventID aborted.
func (r *Runner) Aborted(eventID string) (reason string, aborted bool) {
	inst, ok := r.instances[eventID]
	if !ok {
		return "", false
	}
	return inst.abortedReason, inst.aborted
}

// Tick advances every non-done program one step and returns a fault for each
// program that aborted this tick (propellant exhaustion, §4.4 "Faults").
func (r *Runner) Tick(now models.GET, dt float64) []*models.FaultError {
	var faults []*models.FaultError
	var ids []string
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, eventID := range ids {
		inst := r.instances[eventID]
		if inst.done {
			continue
		}
		if fault := r.step(inst, dt); fault != nil {
			fault.Source = "autopilot:" + eventID
			faults = append(faults, fault)
		}
	}
	return faults
}

// step advances inst by exactly one command-boundary's worth of progress:
// instantaneous commands (dsky_macro) chain through in the same tick, timed
// commands (ullage, throttle ramp, rcs_pulse) consume dt and return.
func (r *Runner) step(inst *instance, dt float64) *models.FaultError {
	for inst.cmdIndex < len(inst.def.Commands) {
		cmd := inst.def.Commands[inst.cmdIndex]
		switch cmd.Kind {
		case models.CmdUllage:
			inst.lifecycle = "ullage"
			inst.cmdElapsed += dt
			if inst.cmdElapsed >= cmd.DurationSeconds {
				inst.cmdIndex++
				inst.cmdElapsed = 0
			}
			return nil

		case models.CmdThrottle:
			inst.lifecycle = "burn"
			if cmd.RampSeconds <= 0 {
				inst.throttle = cmd.Setpoint
				inst.cmdIndex++
				inst.rampFrom = cmd.Setpoint
			} else {
				inst.cmdElapsed += dt
				frac := inst.cmdElapsed / cmd.RampSeconds
				if frac > 1 {
					frac = 1
				}
				inst.throttle = inst.rampFrom + (cmd.Setpoint-inst.rampFrom)*frac
				if frac >= 1 {
					inst.cmdIndex++
					inst.cmdElapsed = 0
					inst.rampFrom = cmd.Setpoint
				}
			}
			return r.drawPropellant(inst, dt)

		case models.CmdDSKYMacro:
			inst.macros = append(inst.macros, decomposeMacro(cmd.MacroID))
			inst.cmdIndex++
			continue

		case models.CmdRCSPulse:
			inst.lifecycle = "burn"
			inst.cmdElapsed += dt
			if inst.cmdElapsed >= cmd.DurationSeconds {
				inst.rcsImpulse += float64(cmd.Pulses)
				inst.rcsPulses += cmd.Pulses
				r.pendingRCS += float64(cmd.Pulses)
				inst.cmdIndex++
				inst.cmdElapsed = 0
			}
			return nil

		case models.CmdComplete:
			inst.lifecycle = "complete"
			inst.done = true
			return nil
		}
	}
	inst.lifecycle = "complete"
	inst.done = true
	return nil
}

func (r *Runner) drawPropellant(inst *instance, dt float64) *models.FaultError {
	kg := inst.def.MassFlowKgPerSec * inst.throttle * dt
	if kg <= 0 {
		return nil
	}
	if r.resources == nil || r.resources.DrawPropellant(inst.def.Stage, kg) {
		return nil
	}
	inst.lifecycle = "aborted"
	inst.aborted = true
	inst.abortedReason = "propellant exhausted"
	inst.done = true
	return models.NewFault(models.KindAutopilot, "autopilot", "propellant exhausted", models.ErrTankEmpty)
}

// decomposeMacro splits a "V16N68"-shaped macro id into verb/noun per the
// DSKY macro ledger (verb is the digits after 'V', noun the digits after
// 'N'); an id without both parts keeps verb and noun at zero.
func decomposeMacro(id string) models.MacroEvent {
	ev := models.MacroEvent{ID: id}
	vIdx, nIdx := -1, -1
	for i := 0; i < len(id); i++ {
		if id[i] == 'V' && vIdx < 0 {
			vIdx = i
		} else if id[i] == 'N' && nIdx < 0 {
			nIdx = i
		}
	}
	if vIdx >= 0 && nIdx > vIdx+1 && nIdx+1 < len(id) {
		ev.Verb = atoiSafe(id[vIdx+1 : nIdx])
		ev.Noun = atoiSafe(id[nIdx+1:])
	}
	return ev
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// Snapshot returns the primary active program's view: the spec's
// tie-break rule is smallest remaining_seconds, ties broken by event id
// (§4.4 "Primary-program selection").
func (r *Runner) Snapshot() (models.AutopilotView, bool) {
	var bestEventID string
	var best *instance
	var ids []string
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		inst := r.instances[id]
		if inst.done {
			continue
		}
		if best == nil || inst.remainingSeconds() < best.remainingSeconds() {
			best = inst
			bestEventID = id
		}
	}
	if best == nil {
		return models.AutopilotView{}, false
	}
	cmdKind := models.CmdComplete
	if best.cmdIndex < len(best.def.Commands) {
		cmdKind = best.def.Commands[best.cmdIndex].Kind
	}
	return models.AutopilotView{
		ID:              bestEventID,
		Stage:           best.def.Stage,
		ElapsedSeconds:  best.cmdElapsed,
		CurrentCommand:  cmdKind,
		ThrottlePercent: best.throttle * 100,
	}, true
}

// DrainRCS returns the RCS pulse count accumulated since the last call and
// resets it to zero, feeding docking.Manager.RecordRCSUsage once per tick.
func (r *Runner) DrainRCS() float64 {
	usage := r.pendingRCS
	r.pendingRCS = 0
	return usage
}

// RecentMacros returns the macro ledger across every program, grouped by
// event id in sorted order and in emission order within each program, used
// by uiframe.agc (SPEC_FULL "DSKY macro ledger").
func (r *Runner) RecentMacros() []models.MacroEvent {
	var all []models.MacroEvent
	var ids []string
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		all = append(all, r.instances[id].macros...)
	}
	return all
}

// Stats summarizes runner-wide counters for the scoring aggregator.
type Stats struct {
	Active   int
	Complete int
	Aborted  int
}

func (r *Runner) Stats() Stats {
	var s Stats
	for _, inst := range r.instances {
		switch {
		case inst.aborted:
			s.Aborted++
		case inst.done:
			s.Complete++
		default:
			s.Active++
		}
	}
	return s
}
