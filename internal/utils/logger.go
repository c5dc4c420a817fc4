package utils

import (
	"log"
	"strings"
)

var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// LogEvent prints one log line tagged with module, action and request id.
// Events raised outside a request (refresh loops, sweeper) log request_id=-.
// Keep the message a summary; never pass passenger or contact details.
func LogEvent(requestID, module, action, message string) {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, req, lineBreaks.Replace(message))
}
