package service

import (
	"strings"
	"testing"

	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
)

func validCustomTemplate() analyzer.Template {
	return analyzer.Template{
		ID:   "lease",
		Name: "Договор аренды",
		Rules: []analyzer.ClauseRule{
			{Name: "term", Reference: "Срок аренды определён", Pattern: "бессрочн", Severity: analyzer.SeverityAdvisory},
		},
	}
}

func TestTemplateStoreAdd(t *testing.T) {
	store, err := NewTemplateStore(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := store.Add(validCustomTemplate()); err != nil {
		t.Fatalf("Expected template to be accepted: %v", err)
	}

	reg := store.Registry()
	if _, ok := reg.Get("lease"); !ok {
		t.Error("Expected custom template in registry")
	}
	// Built-ins are still there.
	if _, ok := reg.Get(analyzer.TemplateTEO); !ok {
		t.Error("Expected built-in template in registry")
	}
}

func TestTemplateStoreAddReplacesByID(t *testing.T) {
	store, _ := NewTemplateStore(nil)

	first := validCustomTemplate()
	if err := store.Add(first); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second := validCustomTemplate()
	second.Name = "Договор аренды v2"
	if err := store.Add(second); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	all := store.Registry().All()
	if len(all) != 3 {
		t.Fatalf("Expected 3 templates (2 built-in + 1 custom), got %d", len(all))
	}
	got, _ := store.Registry().Get("lease")
	if got.Name != "Договор аренды v2" {
		t.Errorf("Expected replacement, got '%s'", got.Name)
	}
}

func TestTemplateStoreValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*analyzer.Template)
		errSub string
	}{
		{"missing id", func(tpl *analyzer.Template) { tpl.ID = "" }, "missing template id"},
		{"missing name", func(tpl *analyzer.Template) { tpl.Name = "" }, "missing template name"},
		{"no rules", func(tpl *analyzer.Template) { tpl.Rules = nil }, "no clause rules"},
		{"unnamed rule", func(tpl *analyzer.Template) { tpl.Rules[0].Name = "" }, "without a name"},
		{"bad pattern", func(tpl *analyzer.Template) { tpl.Rules[0].Pattern = "(" }, "invalid pattern"},
		{"oversized pattern", func(tpl *analyzer.Template) { tpl.Rules[0].Pattern = strings.Repeat("а", 501) }, "exceeds"},
		{"bad severity", func(tpl *analyzer.Template) { tpl.Rules[0].Severity = "fatal" }, "unknown severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := NewTemplateStore(nil)

			tpl := validCustomTemplate()
			tt.mutate(&tpl)

			err := store.Add(tpl)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Expected error containing '%s', got '%v'", tt.errSub, err)
			}
		})
	}
}

func TestNewTemplateStoreRejectsBadSeed(t *testing.T) {
	bad := validCustomTemplate()
	bad.Rules[0].Pattern = "("

	if _, err := NewTemplateStore([]analyzer.Template{bad}); err == nil {
		t.Error("Expected seed validation error")
	}
}

func TestNewTemplateStoreSeed(t *testing.T) {
	store, err := NewTemplateStore([]analyzer.Template{validCustomTemplate()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := store.Registry().Get("lease"); !ok {
		t.Error("Expected seeded template in registry")
	}
}
