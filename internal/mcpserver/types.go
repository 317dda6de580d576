package mcpserver

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tavernkeep/tavernkeep/internal/game/combat"
	"github.com/tavernkeep/tavernkeep/internal/game/gameerr"
)

// ToolError is the structured failure payload carried in tool outputs. Every
// recoverable game error is rendered into one of these instead of failing the
// protocol call.
type ToolError struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Hints   []string `json:"hints,omitempty"`
}

// asToolError converts err into its wire form.
func asToolError(err error) *ToolError {
	return &ToolError{
		Kind:    string(gameerr.KindOf(err)),
		Message: messageOf(err),
		Hints:   gameerr.HintsOf(err),
	}
}

// messageOf returns the bare message without the appended hint list.
func messageOf(err error) string {
	var ge *gameerr.Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return err.Error()
}

// textResult wraps text as successful tool-call content.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult wraps err as tool-call content flagged as a failure.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

// CombatOutput is the shared structured output of every combat tool.
type CombatOutput struct {
	Transcript string            `json:"transcript,omitempty"`
	Lines      []string          `json:"lines,omitempty"`
	Before     []combat.Snapshot `json:"before,omitempty"`
	After      []combat.Snapshot `json:"after,omitempty"`
	Ended      bool              `json:"ended,omitempty"`
	Active     bool              `json:"active"`
	Error      *ToolError        `json:"error,omitempty"`
}

// combatOutput flattens an engine result for the wire.
func combatOutput(res *combat.Result) CombatOutput {
	return CombatOutput{
		Transcript: res.Transcript(),
		Lines:      res.Lines,
		Before:     res.Before,
		After:      res.After,
		Ended:      res.Ended,
		Active:     res.Active,
	}
}
