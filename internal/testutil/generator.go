package testutil

import (
	"context"
	"strings"
	"sync"

	"cfgprobe/internal/generate"
)

// ScriptedGenerator answers generation requests from a fixed script keyed by
// model and a substring of the prompt. It records every request and is safe
// for concurrent use.
type ScriptedGenerator struct {
	mu       sync.Mutex
	replies  []scriptedReply
	requests []generate.Request
	// Fallback answers requests no reply matched. Nil means an empty response.
	Fallback func(req generate.Request) (generate.Response, error)
}

type scriptedReply struct {
	model  string
	prompt string
	resp   generate.Response
	err    error
}

// Reply registers a response for requests to model (any model when empty)
// whose prompt contains promptPart.
func (g *ScriptedGenerator) Reply(model, promptPart string, resp generate.Response) *ScriptedGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies = append(g.replies, scriptedReply{model: model, prompt: promptPart, resp: resp})
	return g
}

// Fail registers an error for matching requests.
func (g *ScriptedGenerator) Fail(model, promptPart string, err error) *ScriptedGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies = append(g.replies, scriptedReply{model: model, prompt: promptPart, err: err})
	return g
}

// Generate implements generate.Generator.
func (g *ScriptedGenerator) Generate(ctx context.Context, req generate.Request) (generate.Response, error) {
	if err := ctx.Err(); err != nil {
		return generate.Response{}, err
	}
	g.mu.Lock()
	g.requests = append(g.requests, req)
	var match *scriptedReply
	for i := range g.replies {
		reply := &g.replies[i]
		if reply.model != "" && reply.model != req.Model {
			continue
		}
		if strings.Contains(req.Prompt, reply.prompt) {
			match = reply
			break
		}
	}
	fallback := g.Fallback
	g.mu.Unlock()

	if match != nil {
		return match.resp, match.err
	}
	if fallback != nil {
		return fallback(req)
	}
	return generate.Response{}, nil
}

// Requests returns a copy of the recorded requests.
func (g *ScriptedGenerator) Requests() []generate.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]generate.Request(nil), g.requests...)
}

// ToolReply builds a response carrying a single tool call.
func ToolReply(tool, input string) generate.Response {
	return generate.Response{ToolCalls: []generate.ToolCall{{Name: tool, Input: input, Status: "completed"}}}
}

// TextReply builds a response carrying only output text.
func TextReply(text string) generate.Response {
	return generate.Response{OutputText: &text}
}
