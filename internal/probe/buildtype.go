package probe

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/muurk/fwbuild/internal/buildinfo"
)

// DetectBuildType inspects the PlatformIO project file at path.
// The [env:<environment>] section is used when present, otherwise the
// first section other than the [platformio] globals. If its build_flags
// contain a -g debug flag the build is DEBUG, otherwise RELEASE. A
// missing or unparseable file yields UNKNOWN together with the reason.
func DetectBuildType(path, environment string) (buildinfo.BuildType, error) {
	if _, err := os.Stat(path); err != nil {
		return buildinfo.BuildUnknown, fmt.Errorf("build configuration not available: %w", err)
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
	}, path)
	if err != nil {
		return buildinfo.BuildUnknown, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	section := envSection(cfg, environment)
	if section == nil {
		return buildinfo.BuildUnknown, fmt.Errorf("%s has no sections", path)
	}

	if !section.HasKey("build_flags") {
		return buildinfo.BuildRelease, nil
	}
	if hasDebugFlag(section.Key("build_flags").String()) {
		return buildinfo.BuildDebug, nil
	}
	return buildinfo.BuildRelease, nil
}

func envSection(cfg *ini.File, environment string) *ini.Section {
	if environment != "" {
		if s, err := cfg.GetSection("env:" + environment); err == nil {
			return s
		}
	}
	for _, s := range cfg.Sections() {
		if s.Name() == ini.DefaultSection || s.Name() == "platformio" {
			continue
		}
		return s
	}
	return nil
}

// hasDebugFlag reports whether flags contain -g, -g<level> or -ggdb as a
// whole token. Flags such as -Wl,--gc-sections do not count.
func hasDebugFlag(flags string) bool {
	for _, f := range strings.Fields(flags) {
		switch {
		case f == "-g", f == "-ggdb":
			return true
		case len(f) == 3 && strings.HasPrefix(f, "-g") && f[2] >= '0' && f[2] <= '3':
			return true
		}
	}
	return false
}
