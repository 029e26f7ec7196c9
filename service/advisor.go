package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
	"github.com/ruslamp94/reglament-svetofor-v78/config"
)

// Default provider endpoints. Overridable for tests.
const (
	defaultOpenAIURL    = "https://api.openai.com/v1/chat/completions"
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	defaultYandexURL    = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"
)

// promptTextLimit caps how much document text goes into the prompt.
const promptTextLimit = 5000

// AdvisorService calls an external text-generation provider for a free-text
// legal opinion. The analysis core never depends on its output; every
// failure here is reported to the caller and nothing else breaks.
type AdvisorService struct {
	config     *config.AdvisorConfig
	httpClient *http.Client

	openAIURL    string
	anthropicURL string
	yandexURL    string
}

func NewAdvisorService(cfg *config.AdvisorConfig) *AdvisorService {
	return &AdvisorService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		openAIURL:    defaultOpenAIURL,
		anthropicURL: defaultAnthropicURL,
		yandexURL:    defaultYandexURL,
	}
}

// Configured reports whether any provider has an API key.
func (s *AdvisorService) Configured() bool {
	return s.config.OpenAIKey != "" || s.config.AnthropicKey != "" || s.config.YandexKey != ""
}

// Review sends the prompt to the first configured provider, in fixed
// preference order: OpenAI, Anthropic, YandexGPT.
func (s *AdvisorService) Review(ctx context.Context, prompt string) (string, error) {
	switch {
	case s.config.OpenAIKey != "":
		return s.reviewOpenAI(ctx, prompt)
	case s.config.AnthropicKey != "":
		return s.reviewAnthropic(ctx, prompt)
	case s.config.YandexKey != "":
		return s.reviewYandex(ctx, prompt)
	}
	return "", fmt.Errorf("no AI provider configured")
}

// BuildPrompt assembles the reviewer prompt from the structured findings.
// The narrative task is only requested for documents classified as
// contracts; anything else just gets described.
func BuildPrompt(orgName, text string, extraction *analyzer.ExtractionResult, compliance *analyzer.ComplianceResult) string {
	var b strings.Builder

	docName := "Договор"
	isContract := false
	counterparty := "—"
	var amount float64
	if extraction != nil {
		docName = extraction.Classification.Name
		isContract = extraction.Classification.IsContract
		if extraction.Counterparty != "" {
			counterparty = extraction.Counterparty
		}
		amount = extraction.Amount
	}

	fmt.Fprintf(&b, "Ты — корпоративный юрист %s.\n\n", orgName)
	fmt.Fprintf(&b, "ДОКУМЕНТ: %s\n", docName)
	fmt.Fprintf(&b, "Контрагент: %s\n", counterparty)
	fmt.Fprintf(&b, "Сумма: %.0f₽\n\n", amount)

	b.WriteString("ТЕКСТ:\n")
	b.WriteString(truncateRunes(text, promptTextLimit))
	b.WriteString("\n\nНАРУШЕНИЯ:\n")

	if compliance == nil || len(compliance.Violations) == 0 {
		b.WriteString("Не выявлено\n")
	} else {
		for i, v := range compliance.Violations {
			if i == 8 {
				break
			}
			marker := "🟡"
			if v.Severity == analyzer.SeverityCritical {
				marker = "🔴"
			}
			clause := ""
			if v.Clause != "" {
				clause = "п." + v.Clause
			}
			fmt.Fprintf(&b, "%d. %s [%s] %s\n   Контекст: %s\n",
				i+1, marker, clause, v.Reference, truncateRunes(v.Context, 100))
		}
	}

	if !isContract {
		b.WriteString("\nЭто НЕ договор. Опиши что это.\n")
		return b.String()
	}

	b.WriteString(`
ЗАДАНИЕ — детальный анализ:

## 1. ЧТО ЭТО
Кратко: тип договора, стороны, предмет, сумма.

## 2. КРИТИЧЕСКИЕ ПУНКТЫ
Для каждого:
- **Пункт X.X** — проблема
- Текст: "цитата"
- ❌ Риск: пояснение
- ✅ Исправить: "готовая формулировка"

## 3. ЗАМЕЧАНИЯ
Аналогично.

## 4. РЕКОМЕНДАЦИЯ
Одно из: ✅ СОГЛАСОВАТЬ / ⚠️ С ЗАМЕЧАНИЯМИ / 🔄 ДОРАБОТАТЬ / ❌ ОТКЛОНИТЬ

Указывай НОМЕРА пунктов и ГОТОВЫЕ формулировки.
`)
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *AdvisorService) reviewOpenAI(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":       "gpt-4o-mini",
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"max_tokens":  3000,
		"temperature": 0.3,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + s.config.OpenAIKey,
	}

	var resp openAIResponse
	if err := s.post(ctx, s.openAIURL, headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (s *AdvisorService) reviewAnthropic(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":      "claude-3-haiku-20240307",
		"max_tokens": 3000,
		"messages":   []map[string]string{{"role": "user", "content": prompt}},
	}
	headers := map[string]string{
		"x-api-key":         s.config.AnthropicKey,
		"anthropic-version": "2023-06-01",
	}

	var resp anthropicResponse
	if err := s.post(ctx, s.anthropicURL, headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response")
	}
	return resp.Content[0].Text, nil
}

type yandexResponse struct {
	Result struct {
		Alternatives []struct {
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"alternatives"`
	} `json:"result"`
}

func (s *AdvisorService) reviewYandex(ctx context.Context, prompt string) (string, error) {
	if s.config.YandexFolder == "" {
		return "", fmt.Errorf("yandexgpt: folder id not configured")
	}
	body := map[string]any{
		"modelUri":          fmt.Sprintf("gpt://%s/yandexgpt-lite", s.config.YandexFolder),
		"completionOptions": map[string]any{"maxTokens": 3000},
		"messages":          []map[string]string{{"role": "user", "text": prompt}},
	}
	headers := map[string]string{
		"Authorization": "Api-Key " + s.config.YandexKey,
	}

	var resp yandexResponse
	if err := s.post(ctx, s.yandexURL, headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Result.Alternatives) == 0 {
		return "", fmt.Errorf("yandexgpt: empty response")
	}
	return resp.Result.Alternatives[0].Message.Text, nil
}

func (s *AdvisorService) post(ctx context.Context, url string, headers map[string]string, body any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
