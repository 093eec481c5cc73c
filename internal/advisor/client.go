// Package advisor asks an OpenAI-compatible chat completions endpoint for
// installation advice about a customer site.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/evcrm/charger-crm/internal/config"
	"github.com/evcrm/charger-crm/internal/domain"
	"go.uber.org/zap"
)

const systemPrompt = "You are a technical consultant for EV charging station installations. " +
	"Answer with a single JSON object and nothing else."

// Client calls the chat completions endpoint
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	temperature *float64
	maxTokens   int
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg *config.AdvisorConfig, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	temperature := cfg.Temperature
	return &Client{
		endpoint:    BuildURL(cfg.BaseURL),
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: &temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// BuildURL appends /chat/completions to baseURL unless it is already there
func BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return baseURL + "/chat/completions"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// BuildPrompt describes the customer site and the four parts of the expected advice
func BuildPrompt(customer *domain.Customer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer: %s\n", customer.Name)
	fmt.Fprintf(&b, "Address: %s\n", customer.Address)
	fmt.Fprintf(&b, "Charger type: %s (%s)\n", customer.ChargerType, customer.ChargerType.Label())
	fmt.Fprintf(&b, "Customer type: %s\n\n", customer.Type)
	b.WriteString("Give brief technical advice covering:\n")
	b.WriteString("1. The best installation spot.\n")
	b.WriteString("2. Electrical requirements (breaker rating, cable cross-section).\n")
	b.WriteString("3. Estimated installation time.\n")
	b.WriteString("4. Fire safety notes.\n\n")
	b.WriteString(`Reply as JSON: {"installationSpot": string, "electricalRequirements": string, ` +
		`"estimatedTime": string, "safetyNotes": string, "estimatedCostRange": string (optional)}`)
	return b.String()
}

// GenerateTechnicalAdvice asks the model for advice about customer.
// Errors are TransientError for network and 5xx/429 failures, FatalError otherwise.
func (c *Client) GenerateTechnicalAdvice(ctx context.Context, customer *domain.Customer) (*domain.TechnicalAdvice, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(customer)},
		},
		Temperature: c.temperature,
	}
	if c.maxTokens > 0 {
		maxTokens := c.maxTokens
		req.MaxTokens = &maxTokens
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("call advisor: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read advisor response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("advisor returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, NewTransientError(err)
		}
		return nil, NewFatalError(err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, NewFatalError(fmt.Errorf("parse advisor response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return nil, NewFatalError(fmt.Errorf("no choices in response"))
	}

	advice, err := ParseAdvice(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, NewFatalError(err)
	}

	c.logger.Debug("Technical advice generated",
		zap.String("customer_id", customer.ID),
		zap.String("model", parsed.Model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return advice, nil
}

// ParseAdvice extracts the advice object from a model reply and checks the required fields
func ParseAdvice(content string) (*domain.TechnicalAdvice, error) {
	raw := ExtractJSON(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in advisor reply")
	}

	var advice domain.TechnicalAdvice
	if err := json.Unmarshal([]byte(raw), &advice); err != nil {
		return nil, fmt.Errorf("decode advice: %w", err)
	}

	var missing []string
	if strings.TrimSpace(advice.InstallationSpot) == "" {
		missing = append(missing, "installationSpot")
	}
	if strings.TrimSpace(advice.ElectricalRequirements) == "" {
		missing = append(missing, "electricalRequirements")
	}
	if strings.TrimSpace(advice.EstimatedTime) == "" {
		missing = append(missing, "estimatedTime")
	}
	if strings.TrimSpace(advice.SafetyNotes) == "" {
		missing = append(missing, "safetyNotes")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("advice is missing %s", strings.Join(missing, ", "))
	}
	return &advice, nil
}
