// Package model defines the data structures shared by the scanner, the triage session and the UI.
package model

import "time"

// Path represents a file system path.
type Path string

// FileCandidate is a regular file found under the scan root.
// Path is absolute and cleaned; it is the candidate's identity.
type FileCandidate struct {
	Path    Path
	Size    int64
	ModTime time.Time
}
