package goble

import (
	"github.com/go-ble/ble"
)

// DeviceFactory creates the platform ble.Device. A variable so tests can
// substitute their own.
var DeviceFactory = func() (ble.Device, error) {
	return newDevice()
}
