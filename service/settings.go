package service

import (
	"fmt"
	"sync"

	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
)

// Settings holds the runtime-adjustable zone thresholds. The classifier
// itself stays pure; handlers read a snapshot here and pass it in.
type Settings struct {
	mu         sync.RWMutex
	thresholds analyzer.Thresholds
}

func NewSettings(t analyzer.Thresholds) *Settings {
	return &Settings{thresholds: t}
}

// Thresholds returns the current threshold snapshot.
func (s *Settings) Thresholds() analyzer.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

// SetThresholds replaces the thresholds. All three cutoffs must be
// non-negative.
func (s *Settings) SetThresholds(t analyzer.Thresholds) error {
	if t.GreenTemplateMax < 0 || t.GreenNonTemplateMax < 0 || t.YellowMax < 0 {
		return fmt.Errorf("thresholds must be non-negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = t
	return nil
}
