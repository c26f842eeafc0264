package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/signalnine/agentbench/internal/fsutil"
)

const latestSummary = "latest.summary.json"

// NewRunID formats the run identifier for a run started at t.
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// RunsDir is where a profile keeps its benchmark artifacts.
func RunsDir(profileRoot string) string {
	return filepath.Join(profileRoot, "benchmarks", "runs")
}

// Store persists the artifacts of one run as JSON files named after the run id.
type Store struct {
	Dir    string
	RunID  string
	Logger *zap.Logger
}

// OpenStore creates the runs directory under profileRoot.
func OpenStore(profileRoot, runID string, logger *zap.Logger) (*Store, error) {
	dir, err := filepath.Abs(RunsDir(profileRoot))
	if err != nil {
		return nil, fmt.Errorf("resolving runs dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating runs dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Dir: dir, RunID: runID, Logger: logger}, nil
}

func (s *Store) LoopPath(loop int, ext string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s.loop%d.%s", s.RunID, loop, ext))
}

func (s *Store) AnalysisPath(loop int) string {
	return s.LoopPath(loop, "self_analysis.md")
}

func (s *Store) SummaryPath() string {
	return filepath.Join(s.Dir, s.RunID+".summary.json")
}

func (s *Store) WriteLoopReport(r *LoopReport) error {
	return writeJSON(s.LoopPath(r.LoopIndex, "json"), r)
}

func (s *Store) WriteAnalysis(loop int, text string) error {
	if err := fsutil.WriteFileAtomic(s.AnalysisPath(loop), []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing self-analysis: %w", err)
	}
	return nil
}

// WriteSummary persists the run summary and repoints latest.summary.json at it.
func (s *Store) WriteSummary(sum *RunSummary) error {
	path := s.SummaryPath()
	if err := writeJSON(path, sum); err != nil {
		return err
	}
	latest := filepath.Join(s.Dir, latestSummary)
	if err := os.Remove(latest); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.Logger.Debug("could not remove latest summary link", zap.String("path", latest), zap.Error(err))
	}
	if err := os.Symlink(filepath.Base(path), latest); err != nil {
		s.Logger.Warn("could not update latest summary link", zap.String("path", latest), zap.Error(err))
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func ReadLoopReport(path string) (*LoopReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading loop report: %w", err)
	}
	var r LoopReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing loop report: %w", err)
	}
	return &r, nil
}

func ReadSummary(path string) (*RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var s RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	return &s, nil
}
