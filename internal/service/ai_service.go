package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"goal_pilot_backend/internal/config"
	"goal_pilot_backend/pkg/monitoring"
	"goal_pilot_backend/pkg/tracing"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// ChatRequest 一次 chat/completions 调用的参数
type ChatRequest struct {
	// Purpose 用于监控标签和追踪，如 overview、stages、tasks、stream
	Purpose   string
	Model     string
	System    string
	Prompt    string
	MaxTokens int
	JSONMode  bool
}

// LLMClient 大模型客户端；超时由调用方通过 ctx 控制
type LLMClient interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	ChatStream(ctx context.Context, req ChatRequest) (<-chan string, <-chan error)
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []AIChatMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"` // 流式响应
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AIService OpenAI 兼容接口的客户端
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{config: cfg, client: &http.Client{}}
}

// UpdateConfig 配置热更新时替换模型与密钥
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}

func (s *AIService) Config() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *AIService) buildRequest(ctx context.Context, req ChatRequest, stream bool) (*http.Request, error) {
	cfg := s.Config()

	model := req.Model
	if model == "" {
		model = cfg.Model
	}

	body := ChatCompletionRequest{
		Model: model,
		Messages: []AIChatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: req.MaxTokens,
		Stream:    stream,
	}
	if req.JSONMode {
		body.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(cfg.BaseURL, "/")+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	return httpReq, nil
}

func (s *AIService) Chat(ctx context.Context, req ChatRequest) (content string, err error) {
	ctx, span := tracing.StartSpan(ctx, "llm.chat",
		attribute.String("llm.purpose", req.Purpose),
		attribute.Int("llm.max_tokens", req.MaxTokens),
	)
	start := time.Now()
	defer func() {
		monitoring.ObserveLLM(req.Purpose, start, err)
		tracing.EndSpan(span, err)
	}()

	httpReq, err := s.buildRequest(ctx, req, false)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}

// ChatStream 以 SSE 方式读取增量内容；out 关闭表示结束，errChan 最多产生一个错误
func (s *AIService) ChatStream(ctx context.Context, req ChatRequest) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		ctx, span := tracing.StartSpan(ctx, "llm.stream", attribute.String("llm.purpose", req.Purpose))
		start := time.Now()
		var streamErr error

		defer close(out)
		defer close(errChan)
		defer func() {
			monitoring.ObserveLLM(req.Purpose, start, streamErr)
			tracing.EndSpan(span, streamErr)
			if streamErr != nil {
				errChan <- streamErr
			}
		}()

		httpReq, err := s.buildRequest(ctx, req, true)
		if err != nil {
			streamErr = err
			return
		}

		resp, err := s.client.Do(httpReq)
		if err != nil {
			streamErr = err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			streamErr = fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					streamErr = err
				}
				return
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}

			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}

			var streamResp ChatCompletionResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				continue
			}
			if streamResp.Error != nil {
				streamErr = fmt.Errorf("AI API error: %s", streamResp.Error.Message)
				return
			}

			if len(streamResp.Choices) > 0 {
				content := streamResp.Choices[0].Delta.Content
				if content == "" {
					continue
				}
				select {
				case out <- content:
				case <-ctx.Done():
					streamErr = ctx.Err()
					return
				}
			}
		}
	}()

	return out, errChan
}
