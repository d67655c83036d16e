package metrics

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Config identifies the service in exported metrics.
type Config struct {
	ServiceName string
	Environment string
}

var sensitiveAttributeKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
}

// FilterAttributes drops attributes with sensitive keys.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if isSensitiveKey(string(attr.Key)) {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveAttributeKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}
