// Package upload implements the post-build hook that submits the compiled
// firmware to the firmware server.
//
// # Flow
//
// An upload moves through a fixed sequence of states:
//
//	START → METADATA_READ → ARTIFACT_LOCATED → UPLOADING → SUCCESS
//	                                                     ↘ FAILED
//
// Both SUCCESS and FAILED are terminal; there is no retry.
//
// # Request
//
//	POST <endpoint>?version=v0.1.042&branch=main
//	Content-Type: multipart/form-data; boundary=…
//
//	file=<firmware.bin>
//
// Version and branch come from the metadata header written by the
// pre-build hook. A 200 response is success; any other status is a
// failed upload that is reported but not returned as an error, so the
// build itself still succeeds. A missing artifact or an unreachable
// server is an error.
package upload
