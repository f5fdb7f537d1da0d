// Package report records conversion failures for later inspection.
// Recording is non-blocking: a failure to persist a record never aborts the
// conversion that produced it.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

const recordsFileName = "failures.json"

// FailureScope 失败范围
type FailureScope string

const (
	// ScopeMathBatch is a whole-line math batch that was dropped together.
	ScopeMathBatch FailureScope = "math_batch"
	// ScopeFreeText is a single free-text region that was skipped.
	ScopeFreeText FailureScope = "free_text"
)

// Record is one conversion failure.
type Record struct {
	Document  string       `json:"document"`
	Line      int          `json:"line"`
	Scope     FailureScope `json:"scope"`
	Regions   int          `json:"regions"`
	ErrorMsg  string       `json:"error_msg"`
	Timestamp time.Time    `json:"timestamp"`
}

// Recorder accumulates failure records and persists them as JSON.
type Recorder struct {
	path    string
	mu      sync.Mutex
	records []Record
}

// NewRecorder creates a recorder persisting under baseDir. An empty baseDir
// defaults to ~/.config/lazy-latex.
func NewRecorder(baseDir string) (*Recorder, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, types.NewAppError(types.ErrInternal, "failed to get home directory", err)
		}
		baseDir = filepath.Join(homeDir, ".config", "lazy-latex")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to create report directory", err)
	}

	r := &Recorder{path: filepath.Join(baseDir, recordsFileName)}
	r.load()
	return r, nil
}

func (r *Recorder) load() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Warn("discarding unreadable failure records", logger.Err(err))
		return
	}
	r.records = records
}

func (r *Recorder) save() {
	data, err := json.MarshalIndent(r.records, "", "  ")
	if err != nil {
		logger.Warn("failed to marshal failure records", logger.Err(err))
		return
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		logger.Warn("failed to write failure records", logger.Err(err))
	}
}

// Record stores one failure. Never returns an error.
func (r *Recorder) Record(document string, line int, scope FailureScope, regions int, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	r.records = append(r.records, Record{
		Document:  document,
		Line:      line,
		Scope:     scope,
		Regions:   regions,
		ErrorMsg:  msg,
		Timestamp: time.Now(),
	})
	r.save()
}

// List returns all records, newest first.
func (r *Recorder) List() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, len(r.records))
	copy(out, r.records)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// Clear removes all records.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
	r.save()
}

// Summary renders a one-line description of a record.
func (s Record) Summary() string {
	return fmt.Sprintf("%s:%d [%s] %d region(s): %s",
		s.Document, s.Line+1, s.Scope, s.Regions, s.ErrorMsg)
}
