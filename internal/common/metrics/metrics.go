// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_invocations_total",
			Help: "Total number of tool invocations by the agent loop",
		},
		[]string{"tool"},
	)

	ToolFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_failures_total",
			Help: "Total number of failed tool invocations",
		},
		[]string{"tool", "error_code"},
	)

	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_tool_duration_seconds",
			Help: "Duration of tool execution in seconds",
		},
		[]string{"tool"},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_llm_requests_total",
			Help: "Total number of chat-completion requests",
		},
		[]string{"status"},
	)

	ChatRequestsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agent_chat_requests_active",
			Help: "Number of chat requests currently being served",
		},
		[]string{"endpoint"},
	)
)
