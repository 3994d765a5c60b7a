// Package uiframe implements the §4.10 UI frame builder: a pure function
// over read-only subsystem snapshots that produces the Frame handed to a
// renderer once per configured HUD interval.
package uiframe

import (
	"fmt"
	"math"
	"sort"

	"groundtrack/engine/models"
)

// Config carries the builder's own tunables, narrowed from engine.Config
// (rounding precision, label overrides) so this package stays independent
// of the facade.
type Config struct {
	RoundDigits int
	TankLabels  map[string]string
	StageLabels map[string]string
}

// Context bundles every subsystem's present snapshot; the engine facade
// assembles one of these at the configured HUD cadence and hands it to
// Build. Docking/Entry are nil when the mission carries no corresponding
// config, so the builder omits those Frame keys entirely.
type Context struct {
	Phase       string
	Events      models.EventsSummary
	Resources   models.ResourcesView
	Checklist   *models.ChecklistView
	Autopilot   *models.AutopilotView
	ManualQueue models.ManualQueueView
	Trajectory  *models.TrajectorySummary
	Docking     *models.DockingSummary
	Entry       *models.EntrySummary
	Comms       models.CommsView
	Score       models.ScoreView
	AGC         models.AGCView
	Audio       models.AudioView
	Performance models.PerformanceView
	MissionLog  models.MissionLogSummary

	// TrajectoryAlerts are standalone alerts sourced outside the resource
	// system (e.g. a fired FailureDef not tied to a single channel);
	// merged with resource-channel alerts and de-duplicated by source.
	TrajectoryAlerts []models.Alert
}

// Builder holds the label/rounding configuration across repeated Build
// calls; it performs no mutation other than tracking the last frame it
// produced, for callers that want to diff against the previous tick.
type Builder struct {
	cfg  Config
	last *models.Frame
}

func New(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Build projects the given context into an immutable Frame at GET now.
func (b *Builder) Build(now models.GET, ctx Context) models.Frame {
	frame := models.Frame{
		GET:         now,
		Phase:       ctx.Phase,
		Events:      roundEvents(ctx.Events),
		Resources:   roundResources(ctx.Resources, b.cfg),
		Checklist:   ctx.Checklist,
		Autopilot:   roundAutopilot(ctx.Autopilot, b.cfg.RoundDigits),
		ManualQueue: ctx.ManualQueue,
		Trajectory:  roundTrajectory(ctx.Trajectory, b.cfg.RoundDigits),
		Docking:     roundDocking(ctx.Docking, b.cfg.RoundDigits),
		Entry:       roundEntry(ctx.Entry, b.cfg.RoundDigits),
		Comms:       ctx.Comms,
		Score:       roundScore(ctx.Score, b.cfg.RoundDigits),
		AGC:         ctx.AGC,
		Audio:       ctx.Audio,
		Performance: ctx.Performance,
		MissionLog:  ctx.MissionLog,
		Alerts:      mergeAlerts(ctx.Resources, ctx.TrajectoryAlerts),
	}
	if frame.Autopilot != nil {
		if l, ok := b.cfg.StageLabels[frame.Autopilot.Stage]; ok {
			frame.Autopilot.Stage = l
		}
	}
	b.last = &frame
	return frame
}

// Last returns the most recently built Frame, or the zero Frame if Build
// has never been called.
func (b *Builder) Last() (models.Frame, bool) {
	if b.last == nil {
		return models.Frame{}, false
	}
	return *b.last, true
}

// TMinus formats a countdown to targetGET as "T-HHH:MM:SS"; once GET has
// passed targetGET it reports "T+HHH:MM:SS" instead.
func TMinus(now, target models.GET) string {
	if now <= target {
		return "T-" + (target - now).String()
	}
	return "T+" + (now - target).String()
}

func round(v float64, digits int) float64 {
	if digits <= 0 {
		return math.Round(v)
	}
	mult := math.Pow(10, float64(digits))
	return math.Round(v*mult) / mult
}

func roundEvents(in models.EventsSummary) models.EventsSummary {
	return in
}

func (cfg Config) tankLabel(channel string) string {
	if l, ok := cfg.TankLabels[channel]; ok {
		return l
	}
	return channel
}

func roundResources(in models.ResourcesView, cfg Config) models.ResourcesView {
	out := models.ResourcesView{Channels: make(map[string]models.ResourceChannelView, len(in.Channels))}
	for channel, v := range in.Channels {
		out.Channels[cfg.tankLabel(channel)] = models.ResourceChannelView{
			Value:   round(v.Value, cfg.RoundDigits),
			Percent: round(v.Percent, cfg.RoundDigits),
			Alert:   v.Alert,
		}
	}
	return out
}

func roundAutopilot(in *models.AutopilotView, digits int) *models.AutopilotView {
	if in == nil {
		return nil
	}
	out := *in
	out.ElapsedSeconds = round(out.ElapsedSeconds, digits)
	out.ThrottlePercent = round(out.ThrottlePercent, digits)
	return &out
}

func roundDocking(in *models.DockingSummary, digits int) *models.DockingSummary {
	if in == nil {
		return nil
	}
	out := *in
	out.RangeMeters = round(out.RangeMeters, digits)
	out.ClosingRateMps = round(out.ClosingRateMps, digits)
	out.DutyCyclePct = round(out.DutyCyclePct, digits)
	gates := make([]models.DockingGateStatus, len(in.Gates))
	for i, g := range in.Gates {
		g.RangeMeters = round(g.RangeMeters, digits)
		g.ClosingRateMps = round(g.ClosingRateMps, digits)
		g.DeadlineSeconds = round(g.DeadlineSeconds, digits)
		gates[i] = g
	}
	out.Gates = gates
	return &out
}

func roundEntry(in *models.EntrySummary, digits int) *models.EntrySummary {
	if in == nil {
		return nil
	}
	out := *in
	out.CorridorOffsetDeg = round(out.CorridorOffsetDeg, digits)
	out.CurrentG = round(out.CurrentG, digits)
	return &out
}

func roundTrajectory(in *models.TrajectorySummary, digits int) *models.TrajectorySummary {
	if in == nil {
		return nil
	}
	out := *in
	out.AltitudeKm = round(out.AltitudeKm, digits)
	out.VelocityMps = round(out.VelocityMps, digits)
	out.PeriapsisKm = round(out.PeriapsisKm, digits)
	out.ApoapsisKm = round(out.ApoapsisKm, digits)
	return &out
}

func roundScore(in models.ScoreView, digits int) models.ScoreView {
	out := in
	out.Total = round(out.Total, digits)
	out.Breakdown.Events = round(out.Breakdown.Events, digits)
	out.Breakdown.Resources = round(out.Breakdown.Resources, digits)
	out.Breakdown.Faults = round(out.Breakdown.Faults, digits)
	out.Breakdown.Manual = round(out.Breakdown.Manual, digits)
	return out
}

// mergeAlerts combines resource-channel alerts (nominal channels are
// dropped) with standalone trajectory alerts, de-duplicating by source so
// a channel already surfaced once never appears twice.
func mergeAlerts(resources models.ResourcesView, trajectory []models.Alert) []models.Alert {
	seen := make(map[string]bool)
	var out []models.Alert

	channels := make([]string, 0, len(resources.Channels))
	for channel := range resources.Channels {
		channels = append(channels, channel)
	}
	sort.Strings(channels)
	for _, channel := range channels {
		v := resources.Channels[channel]
		if v.Alert == "" || v.Alert == models.AlertNominal {
			continue
		}
		if seen[channel] {
			continue
		}
		seen[channel] = true
		out = append(out, models.Alert{
			Source:  channel,
			Level:   v.Alert,
			Message: fmt.Sprintf("%s at %s", channel, v.Alert),
		})
	}
	for _, a := range trajectory {
		if seen[a.Source] {
			continue
		}
		seen[a.Source] = true
		out = append(out, a)
	}
	return out
}
