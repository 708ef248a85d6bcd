package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/scriptgen-ra/scriptgen/common/config"
	"github.com/scriptgen-ra/scriptgen/common/logger"
	"github.com/scriptgen-ra/scriptgen/prompt"
)

// Generation calls are deterministic and roomy; probe calls are small and
// fail fast. Sampling parameters are fixed, never caller-tunable.
const (
	generationTimeout   = 60 * time.Second
	generationMaxTokens = 4000
	probeTimeout        = 30 * time.Second
	probeMaxTokens      = 100
)

// Usage echoes the upstream token accounting when the backend reports it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatRequest struct {
	Messages         []prompt.Message `json:"messages"`
	Temperature      float64          `json:"temperature"`
	MaxTokens        int              `json:"max_tokens"`
	TopP             float64          `json:"top_p"`
	FrequencyPenalty float64          `json:"frequency_penalty"`
	PresencePenalty  float64          `json:"presence_penalty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Invoker sends chat completions to a single Azure OpenAI deployment. All
// addressing comes from the injected config; nothing is read from the
// environment at call time.
type Invoker struct {
	cfg    *config.Config
	client *http.Client
}

func NewInvoker(cfg *config.Config) *Invoker {
	return &Invoker{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (iv *Invoker) endpoint() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(iv.cfg.AzureEndpoint, "/"),
		iv.cfg.DeploymentName, iv.cfg.APIVersion)
}

// Invoke sends the assembled messages with the fixed generation parameters
// and returns the raw completion text. Failures come back as classified
// UpstreamError values.
func (iv *Invoker) Invoke(ctx context.Context, messages []prompt.Message) (string, *Usage, error) {
	return iv.call(ctx, messages, generationMaxTokens, generationTimeout)
}

// Probe sends a fixed one-line prompt with the probe limits. It verifies
// configuration and reachability without burning a real generation budget.
func (iv *Invoker) Probe(ctx context.Context) (string, error) {
	messages := []prompt.Message{
		{Role: "user", Content: "Reply with a short confirmation that you are reachable."},
	}
	content, _, err := iv.call(ctx, messages, probeMaxTokens, probeTimeout)
	return content, err
}

func (iv *Invoker) call(ctx context.Context, messages []prompt.Message,
	maxTokens int, timeout time.Duration) (string, *Usage, error) {
	body, err := json.Marshal(chatRequest{
		Messages:         messages,
		Temperature:      0,
		MaxTokens:        maxTokens,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	})
	if err != nil {
		return "", nil, errors.Wrap(err, "marshal chat request")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, iv.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", nil, errors.Wrap(err, "build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", iv.cfg.APIKey)

	start := time.Now()
	resp, err := iv.client.Do(req)
	if err != nil {
		return "", nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	logger.Logger.Debug("completion call finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return "", nil, classifyStatus(resp)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", nil, upstreamErr(KindEmptyResponse,
			"Invalid response from Azure OpenAI API", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil, upstreamErr(KindEmptyResponse,
			"Invalid response from Azure OpenAI API", nil)
	}
	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", nil, upstreamErr(KindEmptyResponse,
			"Empty or invalid response from Azure OpenAI", nil)
	}
	return content, parsed.Usage, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return upstreamErr(KindTimeout,
			"Azure OpenAI request timed out - service may be slow", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return upstreamErr(KindTimeout,
			"Azure OpenAI request timed out - service may be slow", err)
	}
	return upstreamErr(KindUnreachable,
		"Cannot reach Azure OpenAI endpoint - check the endpoint URL", err)
}

func classifyStatus(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	cause := errors.Errorf("upstream status %d: %s",
		resp.StatusCode, strings.TrimSpace(string(snippet)))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return upstreamErr(KindAuth,
			"Azure OpenAI authentication failed - check the API key", cause)
	case http.StatusNotFound:
		return upstreamErr(KindNotFound,
			"Azure OpenAI deployment not found - check the deployment name", cause)
	case http.StatusTooManyRequests:
		return upstreamErr(KindRateLimit,
			"Azure OpenAI rate limit exceeded - try again later", cause)
	default:
		return upstreamErr(KindUnknown, "Azure OpenAI request failed", cause)
	}
}
