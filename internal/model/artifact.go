package model

import (
	"errors"
	"strings"
)

var ErrInvalidArtifact = errors.New("exactly one of file or text must be provided")

// RawArtifact is the input to an ingestion: either an uploaded document
// (image, PDF, plain text file) or a pasted text blob. Exactly one of the two
// must be present.
type RawArtifact struct {
	FileName string
	MIMEType string
	Data     []byte
	Text     string
}

func (a RawArtifact) HasFile() bool {
	return len(a.Data) > 0
}

func (a RawArtifact) HasText() bool {
	return strings.TrimSpace(a.Text) != ""
}

func (a RawArtifact) Validate() error {
	if a.HasFile() == a.HasText() {
		return ErrInvalidArtifact
	}
	return nil
}

// SourceDescription names the artifact in the resulting draft: the uploaded
// file name, or "pasted text" for the text path.
func (a RawArtifact) SourceDescription() string {
	if a.HasFile() {
		if a.FileName != "" {
			return a.FileName
		}
		return "uploaded file"
	}
	return "pasted text"
}
