package gpio

import "fmt"

// Numbering is a pin-addressing scheme.
type Numbering int

const (
	// BCM addresses pins by Broadcom SoC channel number.
	BCM Numbering = iota
	// Board addresses pins by physical position on the 40-pin header.
	Board
)

func (n Numbering) String() string {
	switch n {
	case BCM:
		return "BCM"
	case Board:
		return "BOARD"
	default:
		return fmt.Sprintf("Numbering(%d)", int(n))
	}
}

// boardToBCM maps 40-pin header positions to BCM channels.
// Positions missing from the map are power or ground.
var boardToBCM = map[int]int{
	3: 2, 5: 3, 7: 4, 8: 14, 10: 15, 11: 17, 12: 18, 13: 27,
	15: 22, 16: 23, 18: 24, 19: 10, 21: 9, 22: 25, 23: 11, 24: 8,
	26: 7, 27: 0, 28: 1, 29: 5, 31: 6, 32: 12, 33: 13, 35: 19,
	36: 16, 37: 26, 38: 20, 40: 21,
}

// Channel converts pin under the numbering scheme to a BCM channel.
func (n Numbering) Channel(pin int) (int, error) {
	switch n {
	case BCM:
		if pin < 0 {
			return 0, fmt.Errorf("invalid BCM channel %d", pin)
		}
		return pin, nil
	case Board:
		ch, ok := boardToBCM[pin]
		if !ok {
			return 0, fmt.Errorf("board pin %d is not a GPIO", pin)
		}
		return ch, nil
	default:
		return 0, fmt.Errorf("unknown numbering %v", n)
	}
}
