package upload

import (
	"fmt"
	"io/fs"
)

// ArtifactNotFoundError reports that the build produced no firmware binary.
type ArtifactNotFoundError struct {
	// Path is where the artifact was expected
	Path string
	// Underlying error
	Err error
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("firmware file not found at %s", e.Path)
}

// Unwrap returns fs.ErrNotExist when the underlying error does not say more.
func (e *ArtifactNotFoundError) Unwrap() error {
	if e.Err == nil {
		return fs.ErrNotExist
	}
	return e.Err
}

// TransportError reports that the request never produced a response.
type TransportError struct {
	// URL is the request URL
	URL string
	// Underlying error
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upload request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
