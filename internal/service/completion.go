package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/domain"
)

const maxResponseBytes = 10 * 1024 * 1024

type CompletionOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stream      bool
	HTTPClient  *http.Client
}

// CompletionService talks to an OpenAI-compatible chat completions endpoint.
type CompletionService struct {
	apiKey     string
	baseURL    string
	opts       CompletionOptions
	httpClient *http.Client
	cache      *ModelsCache
}

func NewCompletionService(opts CompletionOptions) *CompletionService {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.RequestTimeout}
	}
	return &CompletionService{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		opts:       opts,
		httpClient: client,
		cache:      NewModelsCache(config.ModelCacheDuration),
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type ChatRequest struct {
	Model         string         `json:"model"`
	Messages      []ChatMessage  `json:"messages"`
	Temperature   *float64       `json:"temperature,omitempty"`
	TopP          *float64       `json:"top_p,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Stream        bool           `json:"stream"`
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
}

type usagePayload struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *usagePayload `json:"usage"`
	Error *apiError     `json:"error"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Usage *usagePayload `json:"usage"`
	XGroq *struct {
		Usage *usagePayload `json:"usage"`
	} `json:"x_groq"`
	Error *apiError `json:"error"`
}

// Completion is the assistant text of one exchange plus token usage.
type Completion struct {
	Text  string
	Model string
	Usage domain.Usage
}

// ToChatMessages converts conversation history into request messages.
func ToChatMessages(history []domain.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		if m.Local {
			continue
		}
		out = append(out, ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

// Chat sends the full message history and returns the generated text. With
// streaming enabled the deltas are concatenated before returning.
func (s *CompletionService) Chat(ctx context.Context, messages []ChatMessage, model string) (*Completion, error) {
	if model == "" {
		model = s.opts.Model
	}
	temperature := s.opts.Temperature
	topP := s.opts.TopP

	chatReq := ChatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: &temperature,
		TopP:        &topP,
		MaxTokens:   s.opts.MaxTokens,
		Stream:      s.opts.Stream,
	}
	if chatReq.Stream {
		chatReq.StreamOptions = &StreamOptions{IncludeUsage: true}
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if chatReq.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var out *Completion
	if chatReq.Stream {
		out, err = readStream(resp.Body)
	} else {
		out, err = readResponse(resp.Body)
	}
	if err != nil {
		return nil, err
	}
	out.Model = model

	zap.L().Debug("completion finished",
		zap.String("model", model),
		zap.Bool("stream", chatReq.Stream),
		zap.Int("messages", len(messages)),
		zap.Int("response_len", len(out.Text)),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

func readResponse(body io.Reader) (*Completion, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, domain.ErrEmptyCompletion
	}

	out := &Completion{Text: chatResp.Choices[0].Message.Content}
	if chatResp.Usage != nil {
		out.Usage = domain.Usage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
		}
	}
	return out, nil
}

func readStream(body io.Reader) (*Completion, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sb strings.Builder
	out := &Completion{}
	chunks := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, fmt.Errorf("parse stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return nil, fmt.Errorf("API error: %s", chunk.Error.Message)
		}
		chunks++
		for _, c := range chunk.Choices {
			sb.WriteString(c.Delta.Content)
		}

		usage := chunk.Usage
		if usage == nil && chunk.XGroq != nil {
			usage = chunk.XGroq.Usage
		}
		if usage != nil {
			out.Usage = domain.Usage{
				PromptTokens:     usage.PromptTokens,
				CompletionTokens: usage.CompletionTokens,
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	if chunks == 0 {
		return nil, domain.ErrEmptyCompletion
	}

	out.Text = sb.String()
	return out, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	detail := errorDetail(resp.Header.Get("Content-Type"), body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w by provider (429): %s", domain.ErrRateLimited, detail)
	}
	return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, detail)
}

// ListModels returns the models the endpoint serves, sorted by id.
func (s *CompletionService) ListModels(ctx context.Context) ([]domain.AIModel, error) {
	if cached := s.cache.Get(); cached != nil {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Data []struct {
			ID            string `json:"id"`
			OwnedBy       string `json:"owned_by"`
			Active        *bool  `json:"active"`
			ContextWindow int    `json:"context_window"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}

	models := make([]domain.AIModel, 0, len(result.Data))
	for _, m := range result.Data {
		active := true
		if m.Active != nil {
			active = *m.Active
		}
		models = append(models, domain.AIModel{
			ID:            m.ID,
			OwnedBy:       m.OwnedBy,
			ContextWindow: m.ContextWindow,
			Active:        active,
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	s.cache.Set(models)
	return models, nil
}

func (s *CompletionService) GetModel(ctx context.Context, modelID string) (*domain.AIModel, error) {
	models, err := s.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range models {
		if m.ID == modelID {
			return &m, nil
		}
	}
	return nil, domain.ErrModelNotFound
}

// RefreshModels drops the cached model listing.
func (s *CompletionService) RefreshModels() {
	s.cache.Invalidate()
}

func (s *CompletionService) DefaultModel() string {
	return s.opts.Model
}
