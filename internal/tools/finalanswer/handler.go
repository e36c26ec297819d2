// internal/tools/finalanswer/handler.go
package finalanswer

import (
	"context"
	"fmt"

	"flight-concierge/internal/agent"
)

// ToolName matches the terminal tool the agent loop watches for.
const ToolName = agent.FinalAnswerToolName

// Handler is the terminal tool: it passes the model's answer through
// unchanged so the loop can hand it to the user.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Name() string { return ToolName }

func (h *Handler) Description() string {
	return "Provides the final answer to the user. Call this when the task is complete; " +
		"the answer argument is returned to the user verbatim."
}

func (h *Handler) Parameters() []agent.ToolParam {
	return []agent.ToolParam{
		{Name: "answer", Type: "string", Description: "The final answer to return to the user.", Required: true},
	}
}

func (h *Handler) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	answer, ok := args["answer"].(string)
	if !ok || answer == "" {
		return "", fmt.Errorf("answer is required")
	}
	return answer, nil
}
