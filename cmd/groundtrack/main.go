package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"groundtrack/engine"
	"groundtrack/engine/models"
	"groundtrack/engine/progression"
	"groundtrack/engine/telemetry/logging"
)

func main() {
	var (
		missionPath        string
		untilStr           string
		tickRate           float64
		logInterval        float64
		manualChecklists   bool
		checklistStep      int64
		manualScriptPath   string
		recordScriptPath   string
		logFile            string
		logPretty          bool
		hudInterval        float64
		noHUD              bool
		quiet              bool
		metricsAddr        string
		healthAddr         string
		enableMetrics      bool
		metricsBackend     string
		progressionFile    string
	)
	flag.StringVar(&missionPath, "mission", "", "Path to a JSON mission-data document (required)")
	flag.StringVar(&untilStr, "until", "", "Ground elapsed time to run until, HHH:MM:SS (required)")
	flag.Float64Var(&tickRate, "tick-rate", 20, "Simulated ticks per second")
	flag.Float64Var(&logInterval, "log-interval", 3600, "Seconds between periodic mission-log entries")
	flag.BoolVar(&manualChecklists, "manual-checklists", false, "Disable checklist auto-advance")
	flag.Int64Var(&checklistStep, "checklist-step-seconds", 15, "Default checklist step duration")
	flag.StringVar(&manualScriptPath, "manual-script", "", "Path to a JSON manual action script to pre-load")
	flag.StringVar(&recordScriptPath, "record-manual-script", "", "Path to write the executed manual actions as a script")
	flag.StringVar(&logFile, "log-file", "", "Path to flush the end-of-run mission log report to")
	flag.BoolVar(&logPretty, "log-pretty", false, "Convert rich mission-log context to Markdown in the flushed report")
	flag.Float64Var(&hudInterval, "hud-interval", 600, "Seconds between emitted HUD frames")
	flag.BoolVar(&noHUD, "no-hud", false, "Disable HUD frame emission")
	flag.BoolVar(&quiet, "quiet", false, "Suppress console output")
	flag.StringVar(&metricsAddr, "metrics", "", "Expose metrics on address (e.g. :9090)")
	flag.StringVar(&healthAddr, "health", "", "Expose health endpoint on address (e.g. :9091)")
	flag.BoolVar(&enableMetrics, "enable-metrics", false, "Enable the metrics provider (required to serve -metrics)")
	flag.StringVar(&metricsBackend, "metrics-backend", "prom", "Metrics backend: prom|otel|noop")
	flag.StringVar(&progressionFile, "progression-file", "progression.json", "Path to the persisted mission-progress profile")
	flag.Parse()

	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	baseLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	logger := logging.New(baseLogger)

	if missionPath == "" {
		log.Fatal("groundtrack: -mission is required")
	}
	if untilStr == "" {
		log.Fatal("groundtrack: -until is required")
	}

	mission, err := loadMission(missionPath)
	if err != nil {
		log.Fatalf("groundtrack: load mission: %v", err)
	}
	untilGET, err := models.ParseGET(untilStr)
	if err != nil {
		log.Fatalf("groundtrack: parse -until: %v", err)
	}

	var script *models.ManualScript
	if manualScriptPath != "" {
		script, err = loadManualScript(manualScriptPath)
		if err != nil {
			log.Fatalf("groundtrack: load manual script: %v", err)
		}
	}

	cfg := engine.Defaults()
	cfg.TickRate = tickRate
	cfg.LogIntervalSeconds = logInterval
	cfg.ManualChecklists = manualChecklists
	cfg.ChecklistStepSeconds = checklistStep
	cfg.HUDIntervalSeconds = hudInterval
	cfg.DisableHUD = noHUD
	cfg.Quiet = quiet
	cfg.LogFile = logFile
	cfg.LogPretty = logPretty
	cfg.ManualScriptPath = manualScriptPath
	cfg.RecordManualScriptPath = recordScriptPath
	if enableMetrics {
		cfg.MetricsEnabled = true
		cfg.MetricsBackend = metricsBackend
	}

	eng, err := engine.New(mission, script, cfg, logger)
	if err != nil {
		log.Fatalf("groundtrack: create engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Println("signal received; finishing current tick then stopping")
		cancel()
		<-sigCh
		log.Println("second signal received; forcing exit")
		os.Exit(1)
	}()

	if metricsAddr != "" && cfg.MetricsEnabled {
		if h := eng.MetricsHandler(); h != nil {
			mux := http.NewServeMux()
			mux.Handle("/metrics", h)
			srv := &http.Server{Addr: metricsAddr, Handler: mux}
			go func() {
				<-ctx.Done()
				_ = srv.Shutdown(context.Background())
			}()
			go func() {
				if !quiet {
					log.Printf("metrics listening on %s (backend=%s)", metricsAddr, cfg.MetricsBackend)
				}
				_ = srv.ListenAndServe()
			}()
		}
	}

	if healthAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			snap := eng.HealthSnapshot(r.Context())
			_ = json.NewEncoder(w).Encode(snap)
		})
		srv := &http.Server{Addr: healthAddr, Handler: mux}
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		go func() {
			if !quiet {
				log.Printf("health endpoint listening on %s", healthAddr)
			}
			_ = srv.ListenAndServe()
		}()
	}

	summary := eng.Run(ctx, untilGET)

	if !quiet {
		fmt.Printf("run ended at GET %s, grade %s (%.1f), fatal=%v\n",
			summary.EndedAt, summary.Score.Grade, summary.Score.Total, summary.StoppedByFault != nil)
	}

	if logFile != "" {
		if err := os.WriteFile(logFile, []byte(summary.Report), 0o644); err != nil {
			log.Printf("groundtrack: write log file: %v", err)
		}
	}

	if recordScriptPath != "" {
		raw, err := json.MarshalIndent(summary.RecordedScript, "", "  ")
		if err != nil {
			log.Printf("groundtrack: marshal recorded script: %v", err)
		} else if err := os.WriteFile(recordScriptPath, raw, 0o644); err != nil {
			log.Printf("groundtrack: write recorded script: %v", err)
		}
	}

	if progressionFile != "" {
		if err := recordProgression(progressionFile, mission, summary); err != nil {
			log.Printf("groundtrack: record progression: %v", err)
		}
	}

	if summary.StoppedByFault != nil {
		os.Exit(1)
	}
}

func loadMission(path string) (models.MissionData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.MissionData{}, err
	}
	var mission models.MissionData
	if err := json.Unmarshal(raw, &mission); err != nil {
		return models.MissionData{}, err
	}
	return mission, nil
}

func loadManualScript(path string) (*models.ManualScript, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var script models.ManualScript
	if err := json.Unmarshal(raw, &script); err != nil {
		return nil, err
	}
	return &script, nil
}

func recordProgression(path string, mission models.MissionData, summary engine.RunSummary) error {
	store, err := progression.Open(path)
	if err != nil {
		return err
	}
	var rules []models.UnlockRule
	if mission.Workspace != nil {
		rules = mission.Workspace.UnlockRules
	}
	_, err = store.Record(mission.ID, summary, rules)
	return err
}
