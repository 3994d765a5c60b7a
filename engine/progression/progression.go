// Package progression is a small JSON-file-backed profile store: per-mission
// completion counts and best results, plus a set of unlocks evaluated from
// each mission's workspace preset after a run completes. Updated only by
// Record, which is called once per finished Engine.Run.
package progression

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"groundtrack/engine"
	"groundtrack/engine/models"
)

var gradeRank = map[string]int{"F": 0, "D": 1, "C": 2, "B": 3, "A": 4}

func rank(grade string) int {
	r, ok := gradeRank[grade]
	if !ok {
		return -1
	}
	return r
}

// MissionRecord tracks the best outcome seen for one mission across every
// recorded run.
type MissionRecord struct {
	Completions int       `json:"completions"`
	BestGrade   string    `json:"bestGrade"`
	BestScore   float64   `json:"bestScore"`
	LastPlayed  time.Time `json:"lastPlayed"`
}

// Profile is the on-disk shape: one MissionRecord per mission plus the set
// of unlock rule ids satisfied by any run so far.
type Profile struct {
	Missions     map[string]MissionRecord `json:"missions"`
	Unlocks      map[string]bool          `json:"unlocks"`
	Achievements []string                 `json:"achievements"`
}

func emptyProfile() Profile {
	return Profile{Missions: make(map[string]MissionRecord), Unlocks: make(map[string]bool)}
}

func cloneProfile(p Profile) Profile {
	c := Profile{
		Missions:     make(map[string]MissionRecord, len(p.Missions)),
		Unlocks:      make(map[string]bool, len(p.Unlocks)),
		Achievements: append([]string(nil), p.Achievements...),
	}
	for k, v := range p.Missions {
		c.Missions[k] = v
	}
	for k, v := range p.Unlocks {
		c.Unlocks[k] = v
	}
	return c
}

// Store is a mutex-guarded, file-backed Profile. Not safe to share across
// processes; within one process every access is synchronized.
type Store struct {
	mu   sync.RWMutex
	path string
	data Profile
}

// Open loads path if it exists, or starts from an empty Profile if it
// doesn't. A missing parent directory is created lazily on the first Save.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: emptyProfile()}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	if p.Missions == nil {
		p.Missions = make(map[string]MissionRecord)
	}
	if p.Unlocks == nil {
		p.Unlocks = make(map[string]bool)
	}
	s.data = p
	return s, nil
}

// Snapshot returns a deep copy of the current profile.
func (s *Store) Snapshot() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProfile(s.data)
}

// Record folds one finished run's summary into the profile: bumps the
// mission's completion count, raises its best grade/score, evaluates every
// UnlockRule in rules against the run, and persists the result to disk.
func (s *Store) Record(missionID string, summary engine.RunSummary, rules []models.UnlockRule) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.data.Missions[missionID]
	rec.Completions++
	rec.LastPlayed = time.Now().UTC()
	if rank(summary.Score.Grade) > rank(rec.BestGrade) {
		rec.BestGrade = summary.Score.Grade
	}
	if summary.Score.Total > rec.BestScore {
		rec.BestScore = summary.Score.Total
	}
	s.data.Missions[missionID] = rec

	for _, rule := range rules {
		if s.data.Unlocks[rule.ID] {
			continue
		}
		if satisfies(rule, summary) {
			s.data.Unlocks[rule.ID] = true
			s.data.Achievements = append(s.data.Achievements, rule.ID)
		}
	}

	if err := s.save(); err != nil {
		return Profile{}, err
	}
	return cloneProfile(s.data), nil
}

// satisfies evaluates one UnlockRule's grade/score predicate against a run.
// A rule with both fields set requires both to pass; a rule with neither
// field set never unlocks (it names no predicate).
func satisfies(rule models.UnlockRule, summary engine.RunSummary) bool {
	if rule.MinGrade == "" && rule.MinScore == 0 {
		return false
	}
	if rule.MinGrade != "" && rank(summary.Score.Grade) < rank(rule.MinGrade) {
		return false
	}
	if rule.MinScore != 0 && summary.Score.Total < rule.MinScore {
		return false
	}
	return true
}

func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
