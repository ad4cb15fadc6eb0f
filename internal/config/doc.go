// Package config loads the fwbuild project configuration.
//
// Configuration lives in a YAML file in the firmware project root
// (fwbuild.yaml by default). Every key is optional; a missing file yields
// the defaults, which match a PlatformIO project building the
// nodemcu-32s2 environment:
//
//	version: 1
//	metadata_file: src/build_info.h
//	platformio_ini: platformio.ini
//	build_dir: .pio/build
//	environment: nodemcu-32s2
//	upload:
//	  endpoint: http://localhost/satellite_firmware_upload
//	  timeout: 60s
//	  field_name: file
//	resolver:
//	  command: addr2line
//	  wrapper: [wsl]
//	vcs:
//	  command: git
//
// Relative paths are resolved against the project directory with
// Config.Resolve, so the hooks behave the same whichever directory the
// build orchestrator starts them from.
package config
