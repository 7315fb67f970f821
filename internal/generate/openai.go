package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultModel is used when neither the request nor the environment names one.
	DefaultModel = "gpt-5"
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	EnvAPIKey  = "OPENAI_API_KEY"
	EnvModel   = "OPENAI_MODEL"
	EnvBaseURL = "OPENAI_BASE_URL"

	maxResponseBytes = 8 << 20
)

// HTTPDoer abstracts HTTP clients used by the generation client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenAIClient calls the Responses API with custom grammar tools.
type OpenAIClient struct {
	APIKey  string
	BaseURL string
	Client  HTTPDoer
	Model   string
	Retry   RetryPolicy
	// Timeout bounds each attempt; zero leaves it to the context.
	Timeout time.Duration
	Sleep   SleepFunc
	Jitter  func() float64
	Logger  *slog.Logger
}

// DefaultModelFromEnv returns OPENAI_MODEL or DefaultModel.
func DefaultModelFromEnv() string {
	if model := strings.TrimSpace(os.Getenv(EnvModel)); model != "" {
		return model
	}
	return DefaultModel
}

// ClientFromEnv builds a client from OPENAI_API_KEY, OPENAI_BASE_URL and
// OPENAI_MODEL. An explicit model overrides the environment.
func ClientFromEnv(model string, client HTTPDoer) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if apiKey == "" {
		return nil, fmt.Errorf("%s is required", EnvAPIKey)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModelFromEnv()
	}
	return NewOpenAIClient(model, apiKey, os.Getenv(EnvBaseURL), client)
}

// NewOpenAIClient constructs a client with explicit settings.
func NewOpenAIClient(model, apiKey, baseURL string, client HTTPDoer) (*OpenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAIClient{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Client:  client,
		Model:   model,
		Retry:   DefaultRetryPolicy(),
	}, nil
}

// Generate sends req, retrying transient failures per c.Retry.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.Model
	}
	payload, err := json.Marshal(buildRequest(model, req))
	if err != nil {
		return Response{}, &Error{Kind: KindClient, Message: "marshal request", Err: err}
	}
	r := retrier{policy: c.Retry, sleep: c.Sleep, jitter: c.Jitter, logger: c.Logger}
	return r.do(ctx, func(ctx context.Context) (Response, error) {
		return c.attempt(ctx, payload)
	})
}

func (c *OpenAIClient) attempt(parent context.Context, payload []byte) (Response, error) {
	ctx := parent
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, c.Timeout)
		defer cancel()
	}

	endpoint := c.BaseURL + "/responses"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, &Error{Kind: KindClient, Message: "create request", Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return Response{}, transportError(parent, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, transportError(parent, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &Error{
			Kind:    statusKind(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: errorMessage(body),
		}
	}
	out, err := decodeResponse(body)
	if err != nil {
		return Response{}, &Error{Kind: KindDecode, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return out, nil
}
