package upload

// State is a step of the upload flow.
type State int

const (
	StateStart State = iota
	StateMetadataRead
	StateArtifactLocated
	StateUploading
	StateSuccess
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateMetadataRead:
		return "METADATA_READ"
	case StateArtifactLocated:
		return "ARTIFACT_LOCATED"
	case StateUploading:
		return "UPLOADING"
	case StateSuccess:
		return "SUCCESS"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}
