package probe

import (
	"path/filepath"
	"testing"

	"github.com/muurk/fwbuild/internal/buildinfo"
)

func TestDetectBuildType(t *testing.T) {
	tests := []struct {
		name string
		ini  string
		want buildinfo.BuildType
	}{
		{
			name: "multiline debug flags",
			ini:  debugINI,
			want: buildinfo.BuildDebug,
		},
		{
			name: "inline debug flags",
			ini:  "[env:nodemcu-32s2]\nbuild_flags = -O0 -g3\n",
			want: buildinfo.BuildDebug,
		},
		{
			name: "no build flags",
			ini:  "[env:nodemcu-32s2]\nboard = nodemcu-32s2\n",
			want: buildinfo.BuildRelease,
		},
		{
			name: "gc-sections is not a debug flag",
			ini:  "[env:nodemcu-32s2]\nbuild_flags = -Os -Wl,--gc-sections\n",
			want: buildinfo.BuildRelease,
		},
		{
			name: "platformio globals skipped",
			ini:  "[platformio]\ndefault_envs = lolin\n\n[env:lolin]\nbuild_flags = -g\n",
			want: buildinfo.BuildDebug,
		},
		{
			name: "configured environment preferred",
			ini:  "[env:other]\nbuild_flags = -g\n\n[env:nodemcu-32s2]\nbuild_flags = -Os\n",
			want: buildinfo.BuildRelease,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectBuildType(writeINI(t, tt.ini), "nodemcu-32s2")
			if err != nil {
				t.Fatalf("DetectBuildType() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectBuildType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectBuildTypeMissingFile(t *testing.T) {
	got, err := DetectBuildType(filepath.Join(t.TempDir(), "platformio.ini"), "nodemcu-32s2")
	if err == nil {
		t.Error("expected error for missing file")
	}
	if got != buildinfo.BuildUnknown {
		t.Errorf("DetectBuildType() = %q, want UNKNOWN", got)
	}
}

func TestDetectBuildTypeNoSections(t *testing.T) {
	got, err := DetectBuildType(writeINI(t, "; only a comment\n"), "")
	if err == nil {
		t.Error("expected error for file without sections")
	}
	if got != buildinfo.BuildUnknown {
		t.Errorf("DetectBuildType() = %q, want UNKNOWN", got)
	}
}
