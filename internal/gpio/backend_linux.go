//go:build linux

package gpio

func newBackend(driver string, opts Options) backend {
	switch driver {
	case DriverRpio:
		return &rpioBackend{}
	case DriverPeriph:
		return &periphBackend{}
	default:
		return &cdevBackend{chipName: opts.Chip, consumer: opts.Consumer}
	}
}
