package suggestion

import "errors"

// StorageKey is where the history log lives in the Store.
const StorageKey = "query-history"

// ErrPersistence wraps any failure to read or write the history log.
var ErrPersistence = errors.New("suggestion: persistence failed")

// Store is a synchronous string key-value store. Get reports found=false for a
// missing key; an error means the backend itself is unavailable.
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Logger matches the application logger's method set.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}

const logModule = "SuggestionEngine"
