package attr

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Codec errors carry the attribute payload problem; they are wrapped into
// the session's read/write error types by the caller.

func decodeString(data []byte) (interface{}, error) {
	// ASCII with invalid bytes dropped, matching what the lights send.
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c < 0x80 {
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func encodeString(value interface{}) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", value)
	}
	return []byte(s), nil
}

func decodeHexAddress(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty address payload")
	}
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":"), nil
}

func decodePower(data []byte) (interface{}, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("empty power payload")
	}
	return data[0] != 0, nil
}

func encodePower(value interface{}) ([]byte, error) {
	on, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("expected bool, got %T", value)
	}
	if on {
		return []byte{0x01}, nil
	}
	return []byte{0x00}, nil
}

func decodeBrightness(data []byte) (interface{}, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("empty brightness payload")
	}
	return data[0], nil
}

func encodeBrightness(value interface{}) ([]byte, error) {
	b, ok := value.(uint8)
	if !ok {
		return nil, fmt.Errorf("expected uint8, got %T", value)
	}
	// The light rejects 0 and 255; clamp like the Hue app does.
	if b < 1 {
		b = 1
	} else if b > 254 {
		b = 254
	}
	return []byte{b}, nil
}

func decodeColourTemp(data []byte) (interface{}, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("colour temp payload too short: %d bytes", len(data))
	}
	return binary.LittleEndian.Uint16(data), nil
}

func encodeColourTemp(value interface{}) ([]byte, error) {
	mireds, ok := value.(uint16)
	if !ok {
		return nil, fmt.Errorf("expected uint16, got %T", value)
	}
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, mireds)
	return buf, nil
}

func decodeColourXY(data []byte) (interface{}, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("colour xy payload too short: %d bytes", len(data))
	}
	x := binary.LittleEndian.Uint16(data[0:2])
	y := binary.LittleEndian.Uint16(data[2:4])
	return XY{
		X: float64(x) / 0xFFFF,
		Y: float64(y) / 0xFFFF,
	}, nil
}

func encodeColourXY(value interface{}) ([]byte, error) {
	xy, ok := value.(XY)
	if !ok {
		return nil, fmt.Errorf("expected attr.XY, got %T", value)
	}
	if xy.X < 0 || xy.X > 1 || xy.Y < 0 || xy.Y > 1 {
		return nil, fmt.Errorf("xy coordinates out of range: (%v, %v)", xy.X, xy.Y)
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(xy.X*0xFFFF))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(xy.Y*0xFFFF))
	return buf, nil
}
