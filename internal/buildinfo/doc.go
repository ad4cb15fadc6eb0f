// Package buildinfo models the build metadata record that the pre-build
// hook stamps into the firmware.
//
// The record is persisted as a C header of preprocessor definitions so the
// firmware can embed it directly:
//
//	#pragma once
//	#define BUILD_NUMBER_MINOR 42
//	#define BUILD_NUMBER_MAJOR 0
//	#define BUILD_NUMBER_BREAKING 0
//	#define BUILD_VERSION "v0.0.042"
//	#define BUILD_DATE "2025-07-27"
//	#define BUILD_TIME "14:03:11"
//	#define BUILD_TYPE "DEBUG"
//	#define BUILD_DEBUG 1
//	#define BUILD_GIT_HASH "9f1c…"
//	#define BUILD_GIT_BRANCH "main"
//	#define BUILD_MACHINE_NAME "buildbox"
//
// Readers locate fields by macro name, never by line number, so the
// conditional BUILD_DEBUG line or any reordering cannot shift what the
// generator and the uploader see.
//
// # Counters
//
// BUILD_NUMBER_MINOR grows by one on every generator run. The major and
// breaking counters are only ever bumped by hand in the header and are
// carried forward unchanged. BUILD_VERSION is derived from the three
// counters and is never read back as a source of truth.
//
// # Concurrency
//
// Store writes through a temporary file and a rename, so a reader never
// sees a half-written header. There is no lock: one builder per checkout
// is assumed, and two concurrent builds may both read the same counter.
package buildinfo
