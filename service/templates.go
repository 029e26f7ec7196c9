package service

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
)

// maxPatternLength bounds admin-supplied deviation patterns. The regexp
// engine has no catastrophic backtracking, but unbounded pattern size is
// still an availability risk on large documents.
const maxPatternLength = 500

// TemplateStore holds admin-supplied custom templates. The built-in corpus
// lives in the analyzer package; handlers build a merged immutable registry
// per request via Registry().
type TemplateStore struct {
	mu     sync.RWMutex
	custom []analyzer.Template
}

// NewTemplateStore creates a store seeded with templates from the config.
// Seed entries that fail validation are rejected with an error.
func NewTemplateStore(seed []analyzer.Template) (*TemplateStore, error) {
	s := &TemplateStore{}
	for _, t := range seed {
		if err := s.Add(t); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.ID, err)
		}
	}
	return s, nil
}

// Add validates and stores a custom template. Every clause pattern must
// compile and respect the length cap before the template is trusted.
func (s *TemplateStore) Add(t analyzer.Template) error {
	if err := ValidateTemplate(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.custom {
		if s.custom[i].ID == t.ID {
			s.custom[i] = t
			return nil
		}
	}
	s.custom = append(s.custom, t)
	return nil
}

// Registry returns a freshly built immutable registry merging the built-in
// templates with the current custom set.
func (s *TemplateStore) Registry() *analyzer.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analyzer.NewRegistry(s.custom...)
}

// ValidateTemplate checks a custom template before it is accepted.
func ValidateTemplate(t analyzer.Template) error {
	if t.ID == "" {
		return fmt.Errorf("missing template id")
	}
	if t.Name == "" {
		return fmt.Errorf("missing template name")
	}
	if len(t.Rules) == 0 {
		return fmt.Errorf("template has no clause rules")
	}
	for _, rule := range t.Rules {
		if rule.Name == "" {
			return fmt.Errorf("clause rule without a name")
		}
		if len(rule.Pattern) > maxPatternLength {
			return fmt.Errorf("clause %q: pattern exceeds %d characters", rule.Name, maxPatternLength)
		}
		if _, err := regexp.Compile("(?is)" + rule.Pattern); err != nil {
			return fmt.Errorf("clause %q: invalid pattern: %w", rule.Name, err)
		}
		switch rule.Severity {
		case analyzer.SeverityCritical, analyzer.SeverityAdvisory:
		default:
			return fmt.Errorf("clause %q: unknown severity %q", rule.Name, rule.Severity)
		}
	}
	return nil
}
