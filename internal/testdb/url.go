package testdb

import "os"

// Environment variables consulted for the test database URL, in order of
// precedence.
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvTestDatabaseURL = "TASKBOARD_TEST_DATABASE_URL"
	EnvAppDatabaseURL  = "TASKBOARD_DATABASE_URL"
)

var urlEnvVars = []string{EnvDatabaseURL, EnvTestDatabaseURL, EnvAppDatabaseURL}

// GetTestDatabaseURL returns the first non-empty database URL from the
// environment, or "" when none is set.
func GetTestDatabaseURL() string {
	for _, name := range urlEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no database URL is configured.
func ShouldSkipDatabaseTest() bool {
	return GetTestDatabaseURL() == ""
}
