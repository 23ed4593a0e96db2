package procutil

import (
	"os"
	"strings"
)

type EnvVar string

const (
	// LogLevelEnv names the default log level of the autoload tool.
	LogLevelEnv EnvVar = "AUTOLOAD_LOG_LEVEL"
	// DumpEnv turns on the table dump of the autoload tool.
	DumpEnv EnvVar = "AUTOLOAD_DUMP"
)

func LookupBoolEnv(name EnvVar, defaultValue bool) bool {
	if val, ok := os.LookupEnv(string(name)); ok {
		switch strings.ToLower(val) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	}
	return defaultValue
}

func LookupStringEnv(name EnvVar, defaultValue string) string {
	if val, ok := os.LookupEnv(string(name)); ok && val != "" {
		return val
	}
	return defaultValue
}

func LookupEnv(name EnvVar) (string, bool) {
	return os.LookupEnv(string(name))
}
