package eventbus

import (
	"fmt"
	"strings"

	"github.com/amirasaad/speibank/pkg/domain/events"
)

// streamNameFor returns "<prefix>:<domain>:<action>", for example
// "speibank.events:transfer:completed".
func streamNameFor(prefix string, eventType events.EventType) string {
	return nameFor(prefix, eventType)
}

func dlqStreamName(prefix string, eventType events.EventType) string {
	return nameFor(prefix+":dlq", eventType)
}

func nameFor(prefix string, eventType events.EventType) string {
	parts := strings.SplitN(eventType.String(), ".", 2)
	if len(parts) == 2 {
		return fmt.Sprintf("%s:%s:%s", prefix, strings.ToLower(parts[0]), strings.ToLower(parts[1]))
	}
	return fmt.Sprintf("%s:%s", prefix, strings.ToLower(eventType.String()))
}
