package hueble

import (
	"github.com/flip-dots/hueble-go/attr"
)

// Read-only accessors over the state cache. None of these perform I/O;
// they report the last value seen via poll or notification, or the codec's
// declared default when nothing has been seen yet.

// Support reports the discovery verdict for an attribute.
func (l *Light) Support(k attr.Kind) Support {
	return l.cache.support(k)
}

// Value returns the cached domain value for an attribute, or its declared
// default. Prefer the typed accessors below.
func (l *Light) Value(k attr.Kind) interface{} {
	return l.cache.value(k)
}

// PowerState reports whether the light is on.
func (l *Light) PowerState() bool {
	return l.cache.value(attr.Power).(bool)
}

// Brightness reports the light's brightness, 0-255.
func (l *Light) Brightness() uint8 {
	return l.cache.value(attr.Brightness).(uint8)
}

// ColourTemp reports the colour temperature in mireds. The light reports
// 0xFFFF while XY colour mode is active.
func (l *Light) ColourTemp() uint16 {
	return l.cache.value(attr.ColourTemp).(uint16)
}

// ColourXY reports the colour in CIE xy coordinates.
func (l *Light) ColourXY() attr.XY {
	return l.cache.value(attr.ColourXY).(attr.XY)
}

// NameInApp reports the light's name as shown in the Hue app. May differ
// from the advertised Bluetooth name.
func (l *Light) NameInApp() string {
	return l.cache.value(attr.Name).(string)
}

// Manufacturer reports the manufacturer string.
func (l *Light) Manufacturer() string {
	return l.cache.value(attr.Manufacturer).(string)
}

// Model reports the model string.
func (l *Light) Model() string {
	return l.cache.value(attr.Model).(string)
}

// Firmware reports the firmware revision.
func (l *Light) Firmware() string {
	return l.cache.value(attr.Firmware).(string)
}

// ZigbeeAddress reports the light's Zigbee address.
func (l *Light) ZigbeeAddress() string {
	return l.cache.value(attr.ZigbeeAddress).(string)
}

// MinimumMireds is the assumed lower colour temperature bound, 0 when the
// light does not support colour temperature.
func (l *Light) MinimumMireds() int {
	if !l.SupportsColourTemp() {
		return 0
	}
	return attr.MinMireds
}

// MaximumMireds is the assumed upper colour temperature bound, 0 when the
// light does not support colour temperature.
func (l *Light) MaximumMireds() int {
	if !l.SupportsColourTemp() {
		return 0
	}
	return attr.MaxMireds
}

// ColourTempMode reports whether the light is currently in colour
// temperature mode rather than XY colour mode.
func (l *Light) ColourTempMode() bool {
	if !l.SupportsColourTemp() {
		return false
	}
	// A light with temperature but no XY colour has only one mode.
	if !l.SupportsColourXY() {
		return true
	}
	xy := l.ColourXY()
	return xy == attr.XY{} || xy == attr.XY{X: 1, Y: 1}
}

// SupportsPower reports whether the light can be turned on and off. Kept
// separate in case a Hue BLE sensor ever shows up.
func (l *Light) SupportsPower() bool {
	return l.cache.support(attr.Power) == Supported
}

// SupportsBrightness reports whether brightness control is available.
func (l *Light) SupportsBrightness() bool {
	return l.cache.support(attr.Brightness) == Supported
}

// SupportsColourTemp reports whether colour temperature control is
// available.
func (l *Light) SupportsColourTemp() bool {
	return l.cache.support(attr.ColourTemp) == Supported
}

// SupportsColourXY reports whether XY colour control is available.
func (l *Light) SupportsColourXY() bool {
	return l.cache.support(attr.ColourXY) == Supported
}
