package image

// Artifact is the result of one transform: a PNG on disk, either persisted
// at its resolved destination or an ephemeral temp file that exists only to
// feed the clipboard.
type Artifact struct {
	Path      string
	Ephemeral bool
	Width     int
	Height    int
	Radius    int
}
