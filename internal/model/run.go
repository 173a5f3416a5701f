package model

import "time"

// Run kinds recorded in run metrics
const (
	RunKindExtract = "extract"
	RunKindSweep   = "sweep"
)

// RunMetric is one recorded execution of a periodic job
type RunMetric struct {
	ID         int       `json:"id"`
	Kind       string    `json:"kind"`
	Items      int       `json:"items"`   // days visited or subscriptions evaluated
	Matched    int       `json:"matched"` // slots found or subscriptions notified
	Pruned     int       `json:"pruned"`  // expired subscriptions removed (sweeps only)
	Failed     int       `json:"failed"`
	EarlyStop  bool      `json:"early_stop"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
