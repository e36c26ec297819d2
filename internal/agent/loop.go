// internal/agent/loop.go
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flight-concierge/internal/common/errors"
	"flight-concierge/internal/common/logger"
	"flight-concierge/internal/common/observability"
)

// FinalAnswerToolName is the terminal tool: when the model calls it, the loop
// stops and its answer argument becomes the reply to the user.
const FinalAnswerToolName = "final_answer"

// ToolInvocation records one tool call for the response trace.
type ToolInvocation struct {
	Tool      string `json:"tool"`
	Arguments string `json:"arguments"`
	Result    string `json:"result"`
	Error     string `json:"error,omitempty"`
}

// RunResult is the outcome of one agent run.
type RunResult struct {
	Answer    string           `json:"answer"`
	Steps     int              `json:"steps"`
	ToolTrace []ToolInvocation `json:"toolTrace,omitempty"`
}

// Agent drives the tool-calling conversation loop: model turn, tool
// execution, repeat, until the model calls final_answer or replies in plain
// text, capped at MaxSteps turns.
type Agent struct {
	llm      LLMClient
	registry *ToolRegistry
	prompts  *PromptTemplates
	maxSteps int
	logger   logger.Logger
	obs      *observability.Observability
	now      func() time.Time
}

// Option configures an Agent.
type Option func(*Agent)

// WithObservability attaches the otel meter.
func WithObservability(obs *observability.Observability) Option {
	return func(a *Agent) { a.obs = obs }
}

// WithClock overrides the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New creates an agent loop over the given model client and tool registry.
func New(llm LLMClient, reg *ToolRegistry, prompts *PromptTemplates, maxSteps int, log logger.Logger, opts ...Option) *Agent {
	a := &Agent{
		llm:      llm,
		registry: reg,
		prompts:  prompts,
		maxSteps: maxSteps,
		logger:   log.WithFields(map[string]interface{}{"component": "agent"}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes one conversation turn for the given user message.
func (a *Agent) Run(ctx context.Context, userMessage string) (*RunResult, error) {
	messages := []ChatMessage{
		{Role: "system", Content: a.prompts.RenderSystemPrompt(a.registry.List(), a.now())},
		{Role: "user", Content: userMessage},
	}
	toolSchemas := a.registry.ToOpenAISchema()

	result := &RunResult{}

	for step := 0; step < a.maxSteps; step++ {
		result.Steps = step + 1

		resp, err := a.llm.ChatCompletion(ctx, messages, toolSchemas)
		if err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) == 0 {
			// Plain assistant reply ends the loop.
			if resp.Content == "" {
				return nil, errors.NewLLMEmptyResponseError()
			}
			result.Answer = resp.Content
			a.finishRun(ctx, result)
			return result, nil
		}

		messages = append(messages, ChatMessage{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			args, argErr := decodeArguments(call.Function.Arguments)

			if call.Function.Name == FinalAnswerToolName && argErr == nil {
				answer, err := a.registry.Execute(ctx, call.Function.Name, args)
				if err == nil {
					result.Answer = answer
					result.ToolTrace = append(result.ToolTrace, ToolInvocation{
						Tool:      call.Function.Name,
						Arguments: call.Function.Arguments,
						Result:    answer,
					})
					a.finishRun(ctx, result)
					return result, nil
				}
				// Fall through and report the failure to the model.
				argErr = err
			}

			content := a.executeCall(ctx, call, args, argErr, result)
			messages = append(messages, ChatMessage{
				Role:       "tool",
				Name:       call.Function.Name,
				ToolCallID: call.ID,
				Content:    content,
			})
		}
	}

	return nil, errors.NewMaxStepsExceededError(a.maxSteps)
}

func (a *Agent) finishRun(ctx context.Context, result *RunResult) {
	if a.obs != nil {
		a.obs.RecordRunSteps(ctx, result.Steps)
	}
	a.logger.Info("agent run completed", map[string]interface{}{
		"steps":     result.Steps,
		"toolCalls": len(result.ToolTrace),
	})
}

// executeCall runs one tool call and returns the content fed back to the
// model. Failures become error text rather than aborting the run, so the
// model can recover.
func (a *Agent) executeCall(ctx context.Context, call ToolCall, args map[string]interface{}, argErr error, result *RunResult) string {
	invocation := ToolInvocation{
		Tool:      call.Function.Name,
		Arguments: call.Function.Arguments,
	}

	start := a.now()
	var content string
	var err error

	if argErr != nil {
		err = errors.NewToolInvalidArgsError(call.Function.Name, argErr.Error())
	} else {
		content, err = a.registry.Execute(ctx, call.Function.Name, args)
	}

	status := "success"
	if err != nil {
		status = "failure"
		stdErr := errors.Normalize(err)
		content = fmt.Sprintf("Error executing tool %s: %s", call.Function.Name, stdErr.Message)
		if stdErr.Details != "" {
			content += " (" + stdErr.Details + ")"
		}
		invocation.Error = string(stdErr.Code)
	}
	invocation.Result = content

	if a.obs != nil {
		a.obs.RecordToolInvocation(ctx, call.Function.Name, status)
		a.obs.RecordToolDuration(ctx, call.Function.Name, time.Since(start))
	}

	a.logger.Info("tool call handled", map[string]interface{}{
		"tool":   call.Function.Name,
		"status": status,
	})

	result.ToolTrace = append(result.ToolTrace, invocation)
	return content
}

func decodeArguments(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return map[string]interface{}{}, nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}
