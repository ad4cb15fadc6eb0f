package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/muurk/fwbuild/internal/buildinfo"
)

// Outcome is the terminal result of an upload attempt that reached the server.
type Outcome struct {
	State      State
	Version    string
	Branch     string
	Artifact   string
	URL        string
	StatusCode int
	Body       string
}

// Message returns the console line reporting the outcome.
func (o *Outcome) Message() string {
	if o.State == StateSuccess {
		return fmt.Sprintf("Firmware uploaded successfully: %s", o.Body)
	}
	return fmt.Sprintf("Failed to upload firmware: %d - %s", o.StatusCode, o.Body)
}

// Uploader runs the post-build upload.
type Uploader struct {
	store    *buildinfo.Store
	artifact string
	client   *Client
	logger   *zap.Logger

	// OnState, when set, is called on every state transition.
	OnState func(State)
}

// NewUploader creates an uploader reading metadata from store and
// uploading the file at artifact.
func NewUploader(store *buildinfo.Store, artifact string, client *Client, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		store:    store,
		artifact: artifact,
		client:   client,
		logger:   logger,
	}
}

// Upload reads the build metadata, locates the artifact and posts it.
// A non-200 response yields an Outcome in StateFailed and a nil error.
// Missing metadata, a missing artifact and transport failures are errors.
func (u *Uploader) Upload(ctx context.Context) (*Outcome, error) {
	u.transition(StateStart)

	version, branch, err := u.readMetadata()
	if err != nil {
		return nil, err
	}
	u.transition(StateMetadataRead)

	if err := u.locateArtifact(); err != nil {
		return nil, err
	}
	u.transition(StateArtifactLocated)

	requestURL, err := u.client.RequestURL(version, branch)
	if err != nil {
		return nil, err
	}

	u.transition(StateUploading)
	u.logger.Info("uploading firmware",
		zap.String("endpoint", u.client.Endpoint),
		zap.String("artifact", u.artifact),
		zap.String("version", version),
		zap.String("branch", branch),
	)

	resp, err := u.client.Post(ctx, u.artifact, version, branch)
	if err != nil {
		u.logger.Error("firmware upload failed", zap.Error(err))
		return nil, err
	}

	outcome := &Outcome{
		State:      StateFailed,
		Version:    version,
		Branch:     branch,
		Artifact:   u.artifact,
		URL:        requestURL,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
	if resp.OK() {
		outcome.State = StateSuccess
	}
	u.transition(outcome.State)

	u.logger.Info("firmware upload finished",
		zap.String("state", outcome.State.String()),
		zap.Int("status_code", outcome.StatusCode),
	)

	return outcome, nil
}

// readMetadata returns version and branch from the metadata header.
// Values the header does not define are reported as UNKNOWN.
func (u *Uploader) readMetadata() (version, branch string, err error) {
	f, err := os.Open(u.store.Path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read build metadata: %w", err)
	}
	defer f.Close()

	defs, err := buildinfo.Definitions(f)
	if err != nil {
		return "", "", err
	}

	version = buildinfo.Unknown
	if def, ok := defs[buildinfo.KeyVersion]; ok && def.Value != "" {
		version = def.Value
	}
	branch = buildinfo.Unknown
	if def, ok := defs[buildinfo.KeyGitBranch]; ok && def.Value != "" {
		branch = def.Value
	}

	return version, branch, nil
}

func (u *Uploader) locateArtifact() error {
	info, err := os.Stat(u.artifact)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ArtifactNotFoundError{Path: u.artifact, Err: err}
		}
		return fmt.Errorf("failed to access firmware file: %w", err)
	}
	if info.IsDir() {
		return &ArtifactNotFoundError{Path: u.artifact}
	}
	return nil
}

func (u *Uploader) transition(s State) {
	u.logger.Debug("upload state", zap.String("state", s.String()))
	if u.OnState != nil {
		u.OnState(s)
	}
}
