// Package assist drafts admin copy with AssemblyAI LeMUR.
package assist

import (
	"context"
	"errors"
	"strings"

	"github.com/AssemblyAI/assemblyai-go-sdk"
)

const (
	DefaultModel     = "anthropic/claude-3-5-sonnet"
	DefaultMaxTokens = 4000
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("Assembly AI API key not configured")

// Request is one drafting call.
type Request struct {
	Prompt      string
	InputText   string
	FinalModel  string
	MaxTokens   int
	Temperature float64
}

// Result is the drafted text plus an estimate of the tokens spent.
type Result struct {
	Text            string
	TokensEstimated int
}

// Drafter is implemented by LemurClient and by fakes in tests.
type Drafter interface {
	Draft(ctx context.Context, req Request) (Result, error)
}

// LemurClient calls the LeMUR task endpoint.
type LemurClient struct {
	client *assemblyai.Client
}

// NewLemurClient returns nil when apiKey is empty.
func NewLemurClient(apiKey string) *LemurClient {
	if apiKey == "" {
		return nil
	}
	return &LemurClient{client: assemblyai.NewClient(apiKey)}
}

func (l *LemurClient) Draft(ctx context.Context, req Request) (Result, error) {
	if l == nil {
		return Result{}, ErrNotConfigured
	}
	if req.FinalModel == "" {
		req.FinalModel = DefaultModel
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultMaxTokens
	}

	var params assemblyai.LeMURTaskParams
	params.Prompt = assemblyai.String(req.Prompt)
	params.InputText = assemblyai.String(req.InputText)
	params.FinalModel = assemblyai.LeMURModel(req.FinalModel)
	params.MaxOutputSize = assemblyai.Int64(int64(req.MaxTokens))
	params.Temperature = assemblyai.Float64(req.Temperature)

	resp, err := l.client.LeMUR.Task(ctx, params)
	if err != nil {
		return Result{}, err
	}

	text := ""
	if resp.Response != nil {
		text = strings.TrimSpace(*resp.Response)
	}
	return Result{Text: text, TokensEstimated: EstimateTokens(req.Prompt, req.InputText, text)}, nil
}

// EstimateTokens approximates usage at four characters per token.
func EstimateTokens(parts ...string) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return (n + 3) / 4
}
