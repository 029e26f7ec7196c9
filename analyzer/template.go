// Package analyzer implements the rule-based contract analysis core:
// metadata extraction, risk-zone classification and template-compliance
// matching. All entry points are pure functions over immutable inputs and
// are safe to call concurrently.
package analyzer

// Severity of a clause-rule deviation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityAdvisory Severity = "advisory"
)

// ClauseRule describes one reference clause of a template. Pattern is a
// regular expression recognizing the UNACCEPTABLE variant of the clause:
// a match means a deviation from the approved wording, absence of a match
// asserts nothing about whether the clause exists at all.
type ClauseRule struct {
	Name      string   `json:"name" yaml:"name"`
	Reference string   `json:"reference" yaml:"reference"`
	Pattern   string   `json:"pattern" yaml:"pattern"`
	Severity  Severity `json:"severity" yaml:"severity"`
}

// Template is a pre-approved reference contract form.
type Template struct {
	ID      string       `json:"id" yaml:"id"`
	Name    string       `json:"name" yaml:"name"`
	Code    string       `json:"code" yaml:"code"`
	Role    string       `json:"role" yaml:"role"`
	Markers []string     `json:"markers" yaml:"markers"`
	Rules   []ClauseRule `json:"rules" yaml:"rules"`
}

// Built-in template identifiers. Classification hints refer to these.
const (
	TemplateTEO    = "teo"
	TemplateSupply = "supply"
)

// builtinTemplates is the approved template corpus of the regulation.
// Rule order is significant: violations are reported in this order.
func builtinTemplates() []Template {
	return []Template{
		{
			ID:      TemplateTEO,
			Name:    "Договор ТЭО",
			Code:    "ТФ-СПК-001",
			Role:    "Заказчик",
			Markers: []string{"исполнитель", "заказчик", "услуги", "вагон", "перевозка"},
			Rules: []ClauseRule{
				{
					Name:      "prepayment",
					Reference: "Предоплата не более 30%",
					Pattern:   `предоплат[а-яё]*.*?(?:[4-9]\d|100)\s*%`,
					Severity:  SeverityCritical,
				},
				{
					Name:      "payment_term",
					Reference: "Оплата в течение 5 рабочих дней",
					Pattern:   `оплат[а-яё]*.*?(?:1|2|3)\s*(?:рабоч|календарн|банковск)`,
					Severity:  SeverityAdvisory,
				},
				{
					Name:      "penalty_rate",
					Reference: "Неустойка не более 0.1% в день",
					Pattern:   `неустойк[а-яё]*.*?(?:0[,.]?[3-9]|[1-9])\s*%`,
					Severity:  SeverityCritical,
				},
				{
					Name:      "idle_fine",
					Reference: "Штраф за простой не более 2500 руб/сутки",
					Pattern:   `(?:штраф|простой).*?(?:[3-9]\d{3}|[1-9]\d{4,})\s*(?:руб|₽)`,
					Severity:  SeverityCritical,
				},
				{
					Name:      "confidentiality_fine",
					Reference: "Штраф за конфиденциальность не более 3 млн",
					Pattern:   `(?:штраф|конфиденциальност).*?(?:[5-9]|[1-9]\d)\s*(?:000\s*000|млн)`,
					Severity:  SeverityCritical,
				},
				{
					Name:      "all_risks",
					Reference: "Риски распределяются между сторонами",
					Pattern:   `заказчик.*?(?:несёт|принимает).*?(?:все|любые|полн)[а-яё]*\s*риск`,
					Severity:  SeverityCritical,
				},
				{
					Name:      "unilateral_change",
					Reference: "Изменение цены по соглашению сторон",
					Pattern:   `односторонн[а-яё]+.*?(?:изменен|повыш)[а-яё]*.*?(?:цен|тариф)`,
					Severity:  SeverityCritical,
				},
				{
					Name:      "silence_consent",
					Reference: "Услуги приняты после подписания акта",
					Pattern:   `молчани[а-яё]*.*?(?:согласи|акцепт|принят)`,
					Severity:  SeverityAdvisory,
				},
				{
					Name:      "no_limit",
					Reference: "Неустойка с ограничением 10%",
					Pattern:   `без\s*(?:ограничен|лимит|предел)`,
					Severity:  SeverityAdvisory,
				},
			},
		},
		{
			ID:      TemplateSupply,
			Name:    "Договор поставки",
			Code:    "ТФ-СПК-002",
			Role:    "Покупатель",
			Markers: []string{"поставщик", "покупатель", "товар", "поставка"},
			Rules: []ClauseRule{
				{
					Name:      "prepayment",
					Reference: "Предоплата не более 30%",
					Pattern:   `предоплат[а-яё]*.*?(?:[4-9]\d|100)\s*%`,
					Severity:  SeverityCritical,
				},
				{
					Name:      "warranty",
					Reference: "Гарантия не менее 12 месяцев",
					Pattern:   `гарантия.*?[1-6]\s*месяц`,
					Severity:  SeverityAdvisory,
				},
			},
		},
	}
}

// Registry is an immutable lookup of templates by ID. It is built once by
// the caller from the built-in corpus plus any custom templates; the matcher
// never merges anything itself.
type Registry struct {
	templates map[string]Template
	order     []string
}

// NewRegistry builds a registry with the built-in templates, extended by the
// given custom templates. A custom template with a built-in ID overrides it.
func NewRegistry(custom ...Template) *Registry {
	r := &Registry{templates: make(map[string]Template)}
	for _, t := range builtinTemplates() {
		r.add(t)
	}
	for _, t := range custom {
		r.add(t)
	}
	return r
}

func (r *Registry) add(t Template) {
	if _, exists := r.templates[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.templates[t.ID] = t
}

// Get returns the template with the given ID.
func (r *Registry) Get(id string) (Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// All returns the templates in registration order (built-ins first).
func (r *Registry) All() []Template {
	out := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}
