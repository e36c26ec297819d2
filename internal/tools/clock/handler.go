// internal/tools/clock/handler.go
package clock

import (
	"context"
	"fmt"
	"time"

	"flight-concierge/internal/agent"
	"flight-concierge/internal/common/errors"
	"flight-concierge/internal/common/logger"
)

const (
	ToolName = "get_current_time_in_timezone"

	timeLayout = "2006-01-02 15:04:05"
)

// Handler reports the current wall-clock time in an IANA timezone.
type Handler struct {
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{
			"tool": ToolName,
		}),
		now: time.Now,
	}
}

func (h *Handler) Name() string { return ToolName }

func (h *Handler) Description() string {
	return "Fetches the current local time in a specified IANA timezone, e.g. 'America/New_York'."
}

func (h *Handler) Parameters() []agent.ToolParam {
	return []agent.ToolParam{
		{Name: "timezone", Type: "string", Description: "A valid IANA timezone name, e.g. 'America/New_York'.", Required: true},
	}
}

// Execute resolves the timezone and formats the current time there. An
// unknown zone is reported as tool output rather than an error, so the model
// can read the message and correct itself.
func (h *Handler) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	timezone, _ := args["timezone"].(string)

	var loc *time.Location
	var err error
	if timezone == "" {
		// LoadLocation("") silently means UTC, which would hide a missing
		// argument from the model.
		err = fmt.Errorf("timezone is required")
	} else {
		loc, err = time.LoadLocation(timezone)
	}
	if err != nil {
		h.logger.Warn("unknown timezone requested", map[string]interface{}{
			"timezone":  timezone,
			"errorCode": string(errors.ErrCodeInvalidTimezone),
			"error":     err.Error(),
		})
		return fmt.Sprintf("Error fetching time for timezone '%s': %s", timezone, err), nil
	}

	localTime := h.now().In(loc).Format(timeLayout)
	return fmt.Sprintf("The current local time in %s is: %s", timezone, localTime), nil
}
