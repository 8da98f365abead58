// Package settings provides build metadata, runtime configuration, and
// context helpers used across the lazyview CLI and its internal packages.
package settings

import "time"

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "lazyview"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// SourceKind identifies which proxy backs the record collection.
type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceHTTP   SourceKind = "http"
	SourceSQLite SourceKind = "sqlite"
)

// SourceSettings describes where records come from for a single run.
type SourceSettings struct {
	Kind    SourceKind
	Path    string
	URL     string
	Table   string
	Timeout time.Duration
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
// It includes options for logging, the record source, output formatting,
// and error handling behavior.
type Run struct {
	MinLogLevel int8
	LogFile     string
	Source      SourceSettings
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams initializes and returns a pointer to a Run struct with default CLI parameters.
// It sets logging level to 0, a file source with the default request timeout, and
// default flags for quiet mode, color output, and error handling.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Source: SourceSettings{
			Kind:    SourceFile,
			Timeout: 10 * time.Second,
		},
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
}
