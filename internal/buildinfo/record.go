package buildinfo

import (
	"fmt"
	"strings"
)

// Unknown is the placeholder for facts that could not be determined.
const Unknown = "UNKNOWN"

// BuildType is the firmware build flavour detected from the build configuration.
type BuildType string

const (
	BuildDebug   BuildType = "DEBUG"
	BuildRelease BuildType = "RELEASE"
	BuildUnknown BuildType = Unknown
)

// ParseBuildType maps a stored value back to a BuildType.
// Anything unrecognised is BuildUnknown.
func ParseBuildType(s string) BuildType {
	switch BuildType(strings.ToUpper(strings.TrimSpace(s))) {
	case BuildDebug:
		return BuildDebug
	case BuildRelease:
		return BuildRelease
	default:
		return BuildUnknown
	}
}

// Record is the build metadata persisted between builds.
type Record struct {
	Minor    uint `json:"build_number_minor"`
	Major    uint `json:"build_number_major"`
	Breaking uint `json:"build_number_breaking"`

	Date string `json:"build_date"`
	Time string `json:"build_time"`

	Type        BuildType `json:"build_type"`
	GitHash     string    `json:"build_git_hash"`
	GitBranch   string    `json:"build_git_branch"`
	MachineName string    `json:"build_machine_name"`
}

// Initial returns the record used when no previous metadata exists:
// version v0.0.001 with every environment fact unknown.
func Initial() Record {
	return Record{
		Minor:       1,
		Major:       0,
		Breaking:    0,
		Date:        Unknown,
		Time:        Unknown,
		Type:        BuildUnknown,
		GitHash:     Unknown,
		GitBranch:   Unknown,
		MachineName: Unknown,
	}
}

// Version returns the firmware version string, v<breaking>.<major>.<minor:03d>.
func (r Record) Version() string {
	return fmt.Sprintf("v%d.%d.%03d", r.Breaking, r.Major, r.Minor)
}

// Next returns the successor record: minor incremented, major and
// breaking carried forward. Environment facts are copied and are
// expected to be overwritten by the caller.
func (r Record) Next() Record {
	next := r
	next.Minor = r.Minor + 1
	return next
}

// IsDebug reports whether the BUILD_DEBUG flag is emitted.
func (r Record) IsDebug() bool {
	return r.Type == BuildDebug
}

// Field is a labelled value for console summaries.
type Field struct {
	Label string
	Value string
}

// Summary returns the human-readable fields printed after generation.
func (r Record) Summary() []Field {
	return []Field{
		{"Build number", fmt.Sprintf("%d.%d", r.Major, r.Minor)},
		{"Build version", r.Version()},
		{"Build date", r.Date},
		{"Build time", r.Time},
		{"Build type", string(r.Type)},
		{"Build git hash", r.GitHash},
		{"Build git branch", r.GitBranch},
		{"Build machine name", r.MachineName},
	}
}

// FormatCompact returns a single-line description of the record.
func (r Record) FormatCompact() string {
	return fmt.Sprintf("%s (%s) %s@%s built %s %s on %s",
		r.Version(), r.Type, r.GitBranch, shortHash(r.GitHash), r.Date, r.Time, r.MachineName)
}

func shortHash(hash string) string {
	if hash == Unknown || len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}
