package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

func NewPerformanceProfile() *PerformanceProfile {
	return &PerformanceProfile{
		StartTime: time.Now(),
	}
}

type PerformanceProfileEvent struct {
	Name      string    `json:"name"`
	ElapsedMs int64     `json:"elapsedMs"`
	Time      time.Time `json:"time"`
}

// PerformanceProfile records coarse phase timings for one engine run.
type PerformanceProfile struct {
	StartTime time.Time                 `json:"-"`
	Events    []PerformanceProfileEvent `json:"events"`
	TotalMs   int64                     `json:"totalMs"`
}

func (p *PerformanceProfile) End() {
	p.TotalMs = time.Since(p.StartTime).Milliseconds()
}

// Add closes the previous phase and starts a new one.
func (p *PerformanceProfile) Add(name string) {
	now := time.Now()
	var elapsed int64
	if len(p.Events) > 0 {
		elapsed = now.Sub(p.Events[len(p.Events)-1].Time).Milliseconds()
	} else {
		elapsed = now.Sub(p.StartTime).Milliseconds()
	}
	p.Events = append(p.Events, PerformanceProfileEvent{
		Name:      name,
		ElapsedMs: elapsed,
		Time:      now,
	})
}

func (p PerformanceProfile) ToJsonBytes() ([]byte, error) {
	// i dont think this should ever err
	bytes, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal performance profile: %w", err)
	}
	return bytes, nil
}
