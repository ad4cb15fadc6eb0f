// Package setup checks that a project checkout has what the build hooks
// and the backtrace resolver need: the revision-control tool, the
// address resolver, the build configuration, the generated metadata
// header and a reachable upload endpoint.
//
// Checks never fail the caller by themselves; Verify returns a Report and
// the command decides how to present it. A check is Required when the
// build hooks cannot run without it.
package setup
