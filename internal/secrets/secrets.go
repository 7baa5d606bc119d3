package secrets

import (
	"os"

	"github.com/zalando/go-keyring"
)

const service = "roleradar"

const (
	SearchAPIKey   = "tavily"
	AnalysisAPIKey = "gemini"
)

var envFallback = map[string]string{
	SearchAPIKey:   "TAVILY_API_KEY",
	AnalysisAPIKey: "GEMINI_API_KEY",
}

// Get looks a credential up in the OS keyring, falling back to the
// environment. Headless hosts usually have no keyring daemon, so any
// keyring failure falls through to the env var. A missing credential is
// not an error; callers decide whether a feature can run without it.
func Get(name string) string {
	if val, err := keyring.Get(service, name); err == nil && val != "" {
		return val
	}
	if envName, ok := envFallback[name]; ok {
		return os.Getenv(envName)
	}
	return ""
}

// Set stores a credential in the OS keyring.
func Set(name, value string) error {
	return keyring.Set(service, name, value)
}
