//go:build !linux

package gpio

// unsupportedBackend is used for every hardware driver on non-Linux platforms.
type unsupportedBackend struct{}

func newBackend(driver string, opts Options) backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) requestOutput(channel int) (line, error) {
	return nil, ErrUnsupported
}

func (unsupportedBackend) release() error {
	return nil
}
