// Package summary asks an external model to summarize the day's work.
package summary

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tgienger/teamsync/internal/models"
	"github.com/tgienger/teamsync/internal/state"
)

// Fixed texts shown instead of a summary.
const (
	NoTasksMessage = "No tasks recorded today."
	EmptyMessage   = "Unable to generate a summary."
	FailureMessage = "Failed to generate the summary. Check your API key and try again."

	UnknownUser = "Unknown user"

	DefaultTimeout = 30 * time.Second
)

// Entry is one task as handed to the Summarizer
type Entry struct {
	User   string `json:"user"`
	Task   string `json:"task"`
	Status string `json:"status"` // "done" or "pending"
}

// Summarizer turns today's entries into free text
type Summarizer interface {
	Summarize(ctx context.Context, entries []Entry) (string, error)
}

// Status is the requester lifecycle
type Status int

const (
	Idle Status = iota
	Pending
	Resolved
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	default:
		return "idle"
	}
}

// Requester tracks the latest summary request. Only the most recent job may
// resolve it.
type Requester struct {
	summarizer Summarizer
	timeout    time.Duration
	now        func() time.Time
	logger     *slog.Logger

	mu     sync.Mutex
	seq    uint64
	status Status
	text   string
}

// Config holds optional Requester settings
type Config struct {
	Timeout time.Duration    // per call, DefaultTimeout when zero
	Now     func() time.Time // time.Now when nil
	Logger  *slog.Logger
}

// NewRequester returns an idle requester delegating to s
func NewRequester(s Summarizer, cfg Config) *Requester {
	r := &Requester{
		summarizer: s,
		timeout:    cfg.Timeout,
		now:        cfg.Now,
		logger:     cfg.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// State reports the lifecycle and, once resolved, the text
func (r *Requester) State() (Status, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.text
}

// Reset returns the requester to Idle. Jobs still running become stale.
func (r *Requester) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.status = Idle
	r.text = ""
}

// Job is a single summary request
type Job struct {
	r       *Requester
	seq     uint64
	entries []Entry
}

// Outcome is what a job resolved to
type Outcome struct {
	Seq   uint64
	Text  string
	Stale bool // a newer request or a Reset superseded this one
}

// Start snapshots today's tasks and marks the requester pending. With nothing
// recorded today it resolves to NoTasksMessage at once.
func (r *Requester) Start(tasks []models.Task, users []models.User) *Job {
	entries := Snapshot(tasks, users, r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.status = Pending
	r.text = ""
	if len(entries) == 0 {
		r.status = Resolved
		r.text = NoTasksMessage
	}
	return &Job{r: r, seq: r.seq, entries: entries}
}

// Entries returns the snapshot sent with this job
func (j *Job) Entries() []Entry {
	return append([]Entry(nil), j.entries...)
}

// Run performs the request. It never fails: errors become FailureMessage.
func (j *Job) Run(ctx context.Context) Outcome {
	text := NoTasksMessage
	if len(j.entries) > 0 {
		text = j.r.call(ctx, j.entries)
	}
	return j.r.resolve(j.seq, text)
}

func (r *Requester) call(ctx context.Context, entries []Entry) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := r.summarizer.Summarize(ctx, entries)
	if err != nil {
		r.logger.Error("generate summary", slog.String("error", err.Error()), slog.Int("entries", len(entries)))
		return FailureMessage
	}
	if strings.TrimSpace(text) == "" {
		r.logger.Warn("summarizer returned no text")
		return EmptyMessage
	}
	return text
}

func (r *Requester) resolve(seq uint64, text string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		return Outcome{Seq: seq, Text: text, Stale: true}
	}
	r.status = Resolved
	r.text = text
	return Outcome{Seq: seq, Text: text}
}

// Snapshot lists the tasks created or completed today with their authors'
// names, in task list order.
func Snapshot(tasks []models.Task, users []models.User, now time.Time) []Entry {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	today := state.TasksOfDay(tasks, now)
	entries := make([]Entry, 0, len(today))
	for _, t := range today {
		name, ok := names[t.UserID]
		if !ok {
			name = UnknownUser
		}
		status := "pending"
		if t.IsCompleted {
			status = "done"
		}
		entries = append(entries, Entry{User: name, Task: t.Content, Status: status})
	}
	return entries
}
