//go:build !gosseract

package tesseract

// Version returns the version of the tesseract executable, or an empty
// string when it is not installed.
func Version() string {
	return binaryVersion()
}

// New returns an engine backed by the tesseract executable. It fails with
// ErrNotInstalled when tesseract is not on PATH.
func New(languages ...string) (Engine, error) {
	cli, err := NewCLI(languages...)
	if err != nil {
		return nil, err
	}
	return cli, nil
}
