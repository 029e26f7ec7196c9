package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the overall template-compliance assessment.
type Verdict string

const (
	VerdictCompliant    Verdict = "compliant"
	VerdictPartial      Verdict = "partial"
	VerdictNonCompliant Verdict = "non_compliant"
)

// Violation is one detected deviation from a template clause. Clause is a
// best-effort guess inferred from nearby numbering and may attribute the
// deviation to the wrong clause in densely numbered documents.
type Violation struct {
	Rule      string   `json:"rule"`
	Reference string   `json:"reference"`
	Severity  Severity `json:"severity"`
	Clause    string   `json:"clause,omitempty"`
	Context   string   `json:"context"`
}

// ComplianceResult is the outcome of matching a document against one
// template. Computed fresh on every invocation and replaced wholesale;
// Success is false when the template is unknown, which is a normal,
// inspectable outcome rather than an error.
type ComplianceResult struct {
	Success       bool        `json:"success"`
	TemplateID    string      `json:"template_id"`
	TemplateName  string      `json:"template_name,omitempty"`
	Violations    []Violation `json:"violations"`
	CriticalCount int         `json:"critical_count"`
	AdvisoryCount int         `json:"advisory_count"`
	Score         int         `json:"score"`
	Verdict       Verdict     `json:"verdict,omitempty"`
	Summary       string      `json:"summary"`
}

const (
	contextBefore = 50
	contextAfter  = 80
	clauseWindow  = 100

	criticalPenalty = 15
	advisoryPenalty = 5
)

var clauseNumberRe = regexp.MustCompile(`\d+\.\d+`)

// MatchTemplate scans the text for every clause rule of the template and
// scores the deviations. Rules whose pattern fails to compile or match are
// skipped; one bad rule never aborts the scan. Violations keep the rule
// order of the template definition, not their position in the text.
func MatchTemplate(text, templateID string, reg *Registry) ComplianceResult {
	res := ComplianceResult{TemplateID: templateID, Score: 100}

	tpl, ok := reg.Get(templateID)
	if !ok {
		res.Summary = "Типовая форма не найдена"
		return res
	}
	res.Success = true
	res.TemplateName = tpl.Name

	lower := strings.ToLower(text)
	// Match offsets index into lower; context is cut from the original text,
	// which works because case folding preserves byte offsets for the
	// Cyrillic and Latin ranges. Fall back to the folded text otherwise.
	source := text
	if len(lower) != len(text) {
		source = lower
	}

	for _, rule := range tpl.Rules {
		if rule.Pattern == "" {
			continue
		}
		re, err := regexp.Compile("(?is)" + rule.Pattern)
		if err != nil {
			continue
		}
		loc := re.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		res.Violations = append(res.Violations, Violation{
			Rule:      rule.Name,
			Reference: rule.Reference,
			Severity:  rule.Severity,
			Clause:    inferClauseNumber(source, loc[0]),
			Context:   contextWindow(source, loc[0], loc[1]),
		})
	}

	for _, v := range res.Violations {
		if v.Severity == SeverityCritical {
			res.CriticalCount++
		} else {
			res.AdvisoryCount++
		}
	}

	res.Score = 100 - criticalPenalty*res.CriticalCount - advisoryPenalty*res.AdvisoryCount
	if res.Score < 0 {
		res.Score = 0
	}

	switch {
	case res.CriticalCount == 0 && res.AdvisoryCount <= 2:
		res.Verdict = VerdictCompliant
		res.Summary = fmt.Sprintf("Договор соответствует ТФ (%d%%)", res.Score)
	case res.CriticalCount <= 2:
		res.Verdict = VerdictPartial
		res.Summary = fmt.Sprintf("Частичное соответствие (%d%%)", res.Score)
	default:
		res.Verdict = VerdictNonCompliant
		res.Summary = fmt.Sprintf("Не соответствует ТФ (%d%%)", res.Score)
	}

	return res
}

// contextWindow cuts the surrounding text of a match (50 characters before,
// 80 after, clamped to the text bounds), collapses line breaks and wraps
// the result in ellipses.
func contextWindow(s string, start, end int) string {
	ctx := lastRunes(s[:start], contextBefore) + s[start:end] + firstRunes(s[end:], contextAfter)
	ctx = strings.NewReplacer("\r", " ", "\n", " ").Replace(ctx)
	return "..." + strings.TrimSpace(ctx) + "..."
}

// inferClauseNumber looks for a clause-number token in the 100 characters
// preceding the match. First token in the window wins; best-effort only.
func inferClauseNumber(s string, start int) string {
	return clauseNumberRe.FindString(lastRunes(s[:start], clauseWindow))
}
