// Package openai provides a grounded-answer synthesis adapter using the
// OpenAI chat completions API in JSON mode.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clearcite/clearcite-cli/internal/core/domain"
	"github.com/clearcite/clearcite-cli/internal/core/ports/driven"
)

// Ensure SynthesisService implements the interface.
var _ driven.SynthesisService = (*SynthesisService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// temperature keeps synthesis focused and reproducible.
const temperature = 0.2

// systemPrompt enforces strict grounding and the refuse-over-speculate
// contract.
const systemPrompt = "You are a meticulous biomedical literature analyst. " +
	"You may ONLY answer using the provided PubMed/PMC excerpts. " +
	"Every non-trivial claim must be supported by inline citations like [PMID:########] or [PMCID:PMC########]. " +
	"If there is insufficient evidence, respond with this exact JSON object: " +
	`{"answer":"insufficient_evidence","citations":[],"notes":"<why>"} ` +
	"and do not speculate."

// responseRules pins the machine-checkable reply schema.
const responseRules = "Return a STRICT JSON object with keys: " +
	`{"answer": string, "citations": [{"pmid": string, "pmcid": string, "quote": string}], "notes": string}. ` +
	"For each citation, include EITHER pmid OR pmcid (one is sufficient); leave the other as an empty string. " +
	"Each citation must include a concise quote (<=200 chars) copied verbatim from the provided snippet. " +
	"Do not invent identifiers or quotes beyond the snippets."

// Config holds configuration for the OpenAI synthesis service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// SynthesisService produces grounded answers over evidence chunks. Replies
// are requested in JSON mode and schema-guarded before being returned; the
// caller still owns citation verification.
type SynthesisService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatMessage is the OpenAI chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the OpenAI /chat/completions request format.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

// chatResponse is the OpenAI /chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewSynthesisService creates a new OpenAI synthesis service.
func NewSynthesisService(cfg Config) (*SynthesisService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &SynthesisService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Synthesize answers the question using only the given evidence.
func (s *SynthesisService) Synthesize(ctx context.Context, question string, evidence []domain.ScoredChunk) (*domain.SynthesisResult, error) {
	raw, err := s.chatJSON(ctx, buildMessages(question, evidence))
	if err != nil {
		return nil, err
	}

	var obj struct {
		Answer    string `json:"answer"`
		Citations []struct {
			PMID  string `json:"pmid"`
			PMCID string `json:"pmcid"`
			Quote string `json:"quote"`
		} `json:"citations"`
		Notes string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("openai: malformed reply: %w", err)
	}
	if obj.Answer == "" {
		return nil, fmt.Errorf("openai: reply missing answer")
	}

	result := &domain.SynthesisResult{
		Answer: obj.Answer,
		Notes:  obj.Notes,
	}
	// Light schema guard: keep only citations carrying a quote and at least
	// one identifier, with PMCIDs normalized to numeric form. Verbatim-quote
	// verification happens in the answer service.
	for _, c := range obj.Citations {
		pmid := strings.TrimSpace(c.PMID)
		pmcid := strings.TrimSpace(c.PMCID)
		quote := strings.TrimSpace(c.Quote)
		if quote == "" || (pmid == "" && pmcid == "") {
			continue
		}
		if len(pmcid) >= 3 && strings.EqualFold(pmcid[:3], "PMC") {
			pmcid = pmcid[3:]
		}
		result.Citations = append(result.Citations, domain.Citation{
			PMID:  pmid,
			PMCID: pmcid,
			Quote: quote,
		})
	}
	return result, nil
}

// buildMessages assembles a grounding-first prompt: every evidence snippet
// is headed by the identifier tag the model must cite.
func buildMessages(question string, evidence []domain.ScoredChunk) []chatMessage {
	ctxLines := make([]string, 0, len(evidence))
	for _, ch := range evidence {
		tag := "[PMID:" + ch.PMID + "]"
		if ch.PMCID != "" {
			tag = "[PMCID:PMC" + ch.PMCID + "]"
		}
		header := tag + " " + strings.TrimSpace(ch.Title)
		if ch.Section != "" {
			header += " - Section: " + ch.Section
		}
		ctxLines = append(ctxLines, header+"\n"+strings.TrimSpace(ch.Text))
	}

	userBlock := "Question:\n" + strings.TrimSpace(question) +
		"\n\nEvidence (snippets; cite with the PMIDs/PMCIDs shown):\n" +
		strings.Join(ctxLines, "\n\n")

	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userBlock},
		{Role: "assistant", Content: responseRules},
	}
}

// chatJSON calls the chat completions endpoint in JSON mode and returns the
// reply content.
func (s *SynthesisService) chatJSON(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: temperature,
	}
	reqBody.ResponseFormat.Type = "json_object"

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}
