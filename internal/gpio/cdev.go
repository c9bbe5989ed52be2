//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// cdevBackend drives lines through the Linux GPIO character device.
// On a Raspberry Pi the line offsets of gpiochip0 are the BCM channels.
type cdevBackend struct {
	chipName string
	consumer string
	chip     *gpiocdev.Chip
}

func (b *cdevBackend) requestOutput(channel int) (line, error) {
	if b.chip == nil {
		chip, err := gpiocdev.NewChip(b.chipName)
		if err != nil {
			return nil, fmt.Errorf("open gpio chip %s: %w", b.chipName, err)
		}
		b.chip = chip
	}

	// Request the line as an output, initially inactive (low).
	l, err := b.chip.RequestLine(channel, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(b.consumer))
	if err != nil {
		return nil, requestError(channel, err)
	}
	return cdevLine{l}, nil
}

func (b *cdevBackend) release() error {
	if b.chip == nil {
		return nil
	}
	err := b.chip.Close()
	b.chip = nil
	return err
}

type cdevLine struct {
	l *gpiocdev.Line
}

func (c cdevLine) setValue(level Level) error {
	return c.l.SetValue(int(level))
}

// close releases the line without reconfiguring it to input, so the last
// driven level is kept.
func (c cdevLine) close() error {
	return c.l.Close()
}
