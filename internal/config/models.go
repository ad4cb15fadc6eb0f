package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"
)

// CurrentVersion is the only configuration file version understood.
const CurrentVersion = 1

// Config represents the entire project configuration file.
type Config struct {
	Version       int            `yaml:"version"`
	MetadataFile  string         `yaml:"metadata_file"`  // Generated header consumed by the firmware
	PlatformIOINI string         `yaml:"platformio_ini"` // Build configuration inspected for the debug flag
	BuildDir      string         `yaml:"build_dir"`      // Root of the compiler output tree
	Environment   string         `yaml:"environment"`    // Build environment (board) name
	Upload        UploadConfig   `yaml:"upload"`
	Resolver      ResolverConfig `yaml:"resolver"`
	VCS           VCSConfig      `yaml:"vcs"`
}

// UploadConfig configures the post-build firmware upload.
type UploadConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`    // 0 disables the timeout
	FieldName string        `yaml:"field_name"` // Multipart form field carrying the binary
}

// ResolverConfig configures the backtrace address resolver.
type ResolverConfig struct {
	Command   string        `yaml:"command"`
	Wrapper   []string      `yaml:"wrapper,omitempty"`    // Prefix command, e.g. ["wsl"]
	ExtraArgs []string      `yaml:"extra_args,omitempty"` // Passed before -e <image>
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// VCSConfig configures the revision-control probe.
type VCSConfig struct {
	Command string `yaml:"command"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version:       CurrentVersion,
		MetadataFile:  filepath.Join("src", "build_info.h"),
		PlatformIOINI: "platformio.ini",
		BuildDir:      filepath.Join(".pio", "build"),
		Environment:   "nodemcu-32s2",
		Upload: UploadConfig{
			Endpoint:  "http://localhost/satellite_firmware_upload",
			Timeout:   60 * time.Second,
			FieldName: "file",
		},
		Resolver: ResolverConfig{
			Command: "addr2line",
		},
		VCS: VCSConfig{
			Command: "git",
		},
	}
}

// Resolve makes every relative path absolute against root.
func (c *Config) Resolve(root string) {
	c.MetadataFile = resolvePath(root, c.MetadataFile)
	c.PlatformIOINI = resolvePath(root, c.PlatformIOINI)
	c.BuildDir = resolvePath(root, c.BuildDir)
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}

// EnvironmentDir returns the compiler output directory for the environment.
func (c *Config) EnvironmentDir() string {
	return filepath.Join(c.BuildDir, c.Environment)
}

// ArtifactPath returns the path of the compiled firmware binary.
func (c *Config) ArtifactPath() string {
	return filepath.Join(c.EnvironmentDir(), "firmware.bin")
}

// ImagePath returns the path of the firmware ELF image used for symbolization.
func (c *Config) ImagePath() string {
	return filepath.Join(c.EnvironmentDir(), "firmware.elf")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.MetadataFile == "" {
		return fmt.Errorf("metadata_file must not be empty")
	}
	if c.BuildDir == "" {
		return fmt.Errorf("build_dir must not be empty")
	}
	if c.Environment == "" {
		return fmt.Errorf("environment must not be empty")
	}
	if c.Upload.FieldName == "" {
		return fmt.Errorf("upload.field_name must not be empty")
	}
	if c.Upload.Timeout < 0 {
		return fmt.Errorf("upload.timeout must not be negative")
	}

	u, err := url.Parse(c.Upload.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid upload.endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upload.endpoint must be an absolute http(s) URL, got %q", c.Upload.Endpoint)
	}

	if c.Resolver.Command == "" {
		return fmt.Errorf("resolver.command must not be empty")
	}
	if c.VCS.Command == "" {
		return fmt.Errorf("vcs.command must not be empty")
	}

	return nil
}
