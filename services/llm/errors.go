package llm

import "errors"

// ErrTransient marks failures worth retrying: rate limits, 5xx
// responses, dropped connections. Callers test with errors.Is.
var ErrTransient = errors.New("transient llm failure")
