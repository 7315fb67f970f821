package generate

import (
	"encoding/json"
	"strings"
)

type responsesRequest struct {
	Model string        `json:"model"`
	Input string        `json:"input"`
	Tools []toolPayload `json:"tools,omitempty"`
}

type toolPayload struct {
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Format      *toolFormat `json:"format,omitempty"`
}

type toolFormat struct {
	Type       string `json:"type"`
	Syntax     string `json:"syntax"`
	Definition string `json:"definition"`
}

type responsesResponse struct {
	Model      string          `json:"model"`
	Output     []outputItem    `json:"output"`
	OutputText *string         `json:"output_text"`
	Usage      *usagePayload   `json:"usage"`
	Error      json.RawMessage `json:"error"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Input   json.RawMessage `json:"input"`
	CallID  string          `json:"call_id"`
	Status  string          `json:"status"`
	Content []contentPart   `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usagePayload struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func buildRequest(model string, req Request) responsesRequest {
	out := responsesRequest{Model: model, Input: req.Prompt}
	if req.Tool != nil {
		syntax := req.Tool.Grammar.Syntax
		if syntax == "" {
			syntax = "lark"
		}
		out.Tools = []toolPayload{{
			Type:        "custom",
			Name:        req.Tool.Name,
			Description: req.Tool.Description,
			Format: &toolFormat{
				Type:       "grammar",
				Syntax:     syntax,
				Definition: req.Tool.Grammar.Definition,
			},
		}}
	}
	return out
}

// decodeResponse maps the loosely typed API payload onto Response. Tool
// calls whose input is not a string are dropped.
func decodeResponse(body []byte) (Response, error) {
	var raw responsesResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Response{}, err
	}
	out := Response{Model: raw.Model}
	var text strings.Builder
	hasText := false
	for _, item := range raw.Output {
		switch item.Type {
		case "custom_tool_call":
			var input string
			if err := json.Unmarshal(item.Input, &input); err != nil {
				continue
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				Name:   item.Name,
				Input:  input,
				CallID: item.CallID,
				Status: item.Status,
			})
		case "message":
			for _, part := range item.Content {
				if part.Type == "output_text" {
					text.WriteString(part.Text)
					hasText = true
				}
			}
		}
	}
	switch {
	case hasText:
		s := text.String()
		out.OutputText = &s
	case raw.OutputText != nil:
		out.OutputText = raw.OutputText
	}
	if raw.Usage != nil {
		out.Usage = &Usage{InputTokens: raw.Usage.InputTokens, OutputTokens: raw.Usage.OutputTokens}
	}
	return out, nil
}

func errorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512] + "..."
	}
	return msg
}
