// Package generate talks to a grammar-constrained text generation service.
package generate

import "context"

// GrammarSpec is the grammar a custom tool's output must follow.
type GrammarSpec struct {
	Syntax     string `json:"syntax"`
	Definition string `json:"definition"`
}

// ToolSpec describes a custom tool whose input is constrained by a grammar.
type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Grammar     GrammarSpec `json:"grammar"`
}

// Request is a single generation call. Tool is optional.
type Request struct {
	Prompt string
	Model  string
	Tool   *ToolSpec
}

// ToolCall is a structured call the model made to a custom tool.
type ToolCall struct {
	Name   string `json:"name"`
	Input  string `json:"input"`
	CallID string `json:"call_id,omitempty"`
	Status string `json:"status,omitempty"`
}

// Usage reports token counts when the service provides them.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the closed shape of a generation result. OutputText is nil
// when the service returned no plain text at all.
type Response struct {
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	OutputText *string    `json:"output_text,omitempty"`
	Usage      *Usage     `json:"usage,omitempty"`
	Model      string     `json:"model,omitempty"`
}

// Text returns OutputText or "".
func (r Response) Text() string {
	if r.OutputText == nil {
		return ""
	}
	return *r.OutputText
}

// Generator produces a response for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, req Request) (Response, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// PingPrompt is the sanity-check prompt used by Ping.
const PingPrompt = "Say a short friendly hello."

// Ping sends a tool-less request and returns the plain text reply.
func Ping(ctx context.Context, g Generator, model string) (Response, error) {
	return g.Generate(ctx, Request{Prompt: PingPrompt, Model: model})
}
