package core

import "strings"

const RedactedValue = "[REDACTED]"

// RedactMetadata returns a copy of metadata with credential-like keys masked,
// descending into nested maps and slices.
func RedactMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return map[string]any{}
	}
	return redactSensitiveMap(metadata)
}

// RedactLogArgs masks the value of every credential-like key in a flat
// key/value argument list.
func RedactLogArgs(args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	copy(out, args)
	for index := 0; index+1 < len(out); index += 2 {
		key, ok := out[index].(string)
		if !ok {
			continue
		}
		if shouldRedactKey(key) {
			out[index+1] = RedactedValue
			continue
		}
		out[index+1] = redactSensitiveValue(out[index+1])
	}
	return out
}

func redactSensitiveMap(source map[string]any) map[string]any {
	target := make(map[string]any, len(source))
	for key, value := range source {
		if shouldRedactKey(key) {
			target[key] = RedactedValue
			continue
		}
		target[key] = redactSensitiveValue(value)
	}
	return target
}

func redactSensitiveValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return redactSensitiveMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactSensitiveValue(typed[i])
		}
		return out
	default:
		return value
	}
}

func shouldRedactKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || isTraceabilityKey(key) {
		return false
	}
	sensitiveTokens := []string{
		"password",
		"secret",
		"token",
		"authorization",
		"bearer",
		"credential",
		"verification_code",
		"verificationcode",
		"reset_code",
	}
	for _, token := range sensitiveTokens {
		if strings.Contains(key, token) {
			return true
		}
	}
	return false
}

func isTraceabilityKey(key string) bool {
	switch key {
	case "client_id",
		"user_id",
		"operation",
		"error_code",
		"verification_session_id",
		"trace_id",
		"request_id":
		return true
	default:
		return false
	}
}
