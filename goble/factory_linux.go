//go:build linux

package goble

import (
	"fmt"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
)

func newDevice() (ble.Device, error) {
	dev, err := linux.NewDevice()
	if err != nil {
		return nil, fmt.Errorf("failed to open HCI device (is Bluetooth enabled?): %w", err)
	}
	return dev, nil
}
