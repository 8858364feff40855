package summary

import (
	"strconv"
	"strings"
)

const (
	DefaultPrompt   = "Summarize this call: {transcription}"
	defaultAgent    = "Unknown"
	defaultDir      = "INBOUND"
	heuristicSuffix = " (Heuristic)"
)

const (
	labelOutgoing = "Outgoing"
	labelIncoming = "Incoming"
)

const (
	placeholderAgentName     = "{agent_name}"
	placeholderCustomerPhone = "{customer_phone}"
	placeholderCallDirection = "{call_direction}"
	placeholderCallDuration  = "{call_duration}"
	placeholderTranscription = "{transcription}"
)

// CallDetails is the merged view of a Call and its Session.
type CallDetails struct {
	Direction       string
	FromNumber      string
	ToNumber        string
	AgentEmail      string
	DurationSeconds int
}

// firstNonEmpty returns the first value that is not the zero value of T.
func firstNonEmpty[T comparable](values ...T) T {
	var zero T

	for _, value := range values {
		if value != zero {
			return value
		}
	}

	return zero
}

// isOutgoing matches "OUTBOUND" exactly, plus the legacy "outgoing".
func isOutgoing(direction string) bool {
	return direction == "OUTBOUND" || direction == "outgoing"
}

// CustomerContact returns the customer's number and the direction label.
func (details CallDetails) CustomerContact() (string, string) {
	if isOutgoing(details.Direction) {
		return details.ToNumber, labelOutgoing
	}

	return details.FromNumber, labelIncoming
}

// RenderPrompt fills the placeholders of template. The transcript goes in last so
// that text inside it is never treated as a placeholder. Unknown placeholders stay as they are.
func RenderPrompt(template string, details CallDetails, transcript string) string {
	customerPhone, directionLabel := details.CustomerContact()

	replacements := []struct {
		placeholder string
		value       string
	}{
		{placeholder: placeholderAgentName, value: details.AgentEmail},
		{placeholder: placeholderCustomerPhone, value: customerPhone},
		{placeholder: placeholderCallDirection, value: directionLabel},
		{placeholder: placeholderCallDuration, value: strconv.Itoa(details.DurationSeconds) + "s"},
		{placeholder: placeholderTranscription, value: transcript},
	}

	rendered := template
	for _, replacement := range replacements {
		rendered = strings.ReplaceAll(rendered, replacement.placeholder, replacement.value)
	}

	return rendered
}
