// Package attr defines the GATT attributes exposed by Philips Hue BLE
// lights and the pure codecs that map their raw payloads to domain values.
//
// The attribute set is closed: every attribute the session layer can read,
// write or subscribe to is described by exactly one Descriptor in the table
// below. Codecs are stateless and perform no I/O.
package attr

import (
	"strings"
)

// Kind identifies one attribute of the light.
type Kind int

const (
	Manufacturer Kind = iota
	Model
	Firmware
	ZigbeeAddress
	Name
	Power
	Brightness
	ColourTemp
	ColourXY
)

// kindNames is indexed by Kind.
var kindNames = [...]string{
	"manufacturer",
	"model",
	"firmware",
	"zigbee_address",
	"name",
	"power",
	"brightness",
	"colour_temp",
	"colour_xy",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// GATT characteristic UUIDs used by Hue BLE lights.
const (
	// UUIDManufacturer holds the manufacturer string.
	UUIDManufacturer = "00002a29-0000-1000-8000-00805f9b34fb"

	// UUIDModel holds the model number string.
	UUIDModel = "00002a24-0000-1000-8000-00805f9b34fb"

	// UUIDFirmware holds the firmware revision string.
	UUIDFirmware = "00002a28-0000-1000-8000-00805f9b34fb"

	// UUIDZigbeeAddress holds the light's Zigbee address.
	UUIDZigbeeAddress = "97fe6561-0001-4f62-86e9-b71ee2da3d22"

	// UUIDName holds the light name as shown in the Hue app.
	UUIDName = "97fe6561-0003-4f62-86e9-b71ee2da3d22"

	// UUIDPower is the power state, 0x00/0x01. Subscribable.
	UUIDPower = "932c32bd-0002-47a2-835a-a8d455b859dd"

	// UUIDBrightness is the brightness, one byte 0-255. Subscribable.
	UUIDBrightness = "932c32bd-0003-47a2-835a-a8d455b859dd"

	// UUIDColourTemp is the colour temperature in mireds, uint16
	// little-endian. Reads 0xFFFF while XY colour is active. Subscribable.
	UUIDColourTemp = "932c32bd-0004-47a2-835a-a8d455b859dd"

	// UUIDColourXY is the XY colour, two uint16 little-endian coordinates
	// scaled by 0xFFFF. Reads 0xFFFFFFFF while white mode is active.
	// Subscribable.
	UUIDColourXY = "932c32bd-0005-47a2-835a-a8d455b859dd"

	// UUIDHueService shows up in advertisements of Hue lights only and can
	// be used to recognise them without connecting.
	UUIDHueService = "0000fe0f-0000-1000-8000-00805f9b34fb"
)

const (
	// MinMireds is the assumed minimum colour temperature. The light does
	// not expose this bound anywhere we know of.
	MinMireds = 153

	// MaxMireds is the assumed maximum colour temperature.
	MaxMireds = 500

	// DefaultMetadata is reported for identity attributes that have never
	// been read.
	DefaultMetadata = "Unknown"
)

// XY is a colour in CIE xy coordinates, each component in [0.0, 1.0].
type XY struct {
	X float64
	Y float64
}

// Descriptor is the static description of one attribute kind: its protocol
// UUID, codec, bounds and capabilities.
type Descriptor struct {
	Kind Kind
	UUID string

	// Decode maps a raw payload to the attribute's domain value. Encode is
	// the inverse; it is nil for read-only attributes.
	Decode func(data []byte) (interface{}, error)
	Encode func(value interface{}) ([]byte, error)

	// Default is the value reported while the attribute has never been
	// successfully read or notified.
	Default interface{}

	// Min and Max bound numeric attributes. Both are zero for non-numeric
	// kinds.
	Min int
	Max int

	// Subscribable attributes push change notifications.
	Subscribable bool

	// Writable attributes accept control writes.
	Writable bool
}

// NormalizeUUID converts a UUID string to the canonical lookup form
// (lowercase, no dashes). Accepts both dashed and already normalized input.
func NormalizeUUID(uuid string) string {
	return strings.ToLower(strings.ReplaceAll(uuid, "-", ""))
}

var table = map[Kind]Descriptor{
	Manufacturer: {
		Kind:    Manufacturer,
		UUID:    UUIDManufacturer,
		Decode:  decodeString,
		Default: DefaultMetadata,
	},
	Model: {
		Kind:    Model,
		UUID:    UUIDModel,
		Decode:  decodeString,
		Default: DefaultMetadata,
	},
	Firmware: {
		Kind:    Firmware,
		UUID:    UUIDFirmware,
		Decode:  decodeString,
		Default: DefaultMetadata,
	},
	ZigbeeAddress: {
		Kind:    ZigbeeAddress,
		UUID:    UUIDZigbeeAddress,
		Decode:  decodeHexAddress,
		Default: DefaultMetadata,
	},
	Name: {
		Kind:     Name,
		UUID:     UUIDName,
		Decode:   decodeString,
		Encode:   encodeString,
		Default:  DefaultMetadata,
		Writable: true,
	},
	Power: {
		Kind:         Power,
		UUID:         UUIDPower,
		Decode:       decodePower,
		Encode:       encodePower,
		Default:      false,
		Subscribable: true,
		Writable:     true,
	},
	Brightness: {
		Kind:         Brightness,
		UUID:         UUIDBrightness,
		Decode:       decodeBrightness,
		Encode:       encodeBrightness,
		Default:      uint8(0),
		Min:          0,
		Max:          255,
		Subscribable: true,
		Writable:     true,
	},
	ColourTemp: {
		Kind:         ColourTemp,
		UUID:         UUIDColourTemp,
		Decode:       decodeColourTemp,
		Encode:       encodeColourTemp,
		Default:      uint16(0),
		Min:          MinMireds,
		Max:          MaxMireds,
		Subscribable: true,
		Writable:     true,
	},
	ColourXY: {
		Kind:         ColourXY,
		UUID:         UUIDColourXY,
		Decode:       decodeColourXY,
		Encode:       encodeColourXY,
		Default:      XY{},
		Subscribable: true,
		Writable:     true,
	},
}

var byUUID = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(table))
	for _, d := range table {
		m[NormalizeUUID(d.UUID)] = d
	}
	return m
}()

// Lookup returns the descriptor for the given kind. It panics on an unknown
// kind since the attribute set is closed at compile time.
func Lookup(k Kind) Descriptor {
	d, ok := table[k]
	if !ok {
		panic("attr: unknown kind")
	}
	return d
}

// ByUUID resolves a descriptor from a characteristic UUID in either dashed
// or normalized form.
func ByUUID(uuid string) (Descriptor, bool) {
	d, ok := byUUID[NormalizeUUID(uuid)]
	return d, ok
}

// Kinds returns all attribute kinds in stable declaration order.
func Kinds() []Kind {
	return []Kind{
		Manufacturer,
		Model,
		Firmware,
		ZigbeeAddress,
		Name,
		Power,
		Brightness,
		ColourTemp,
		ColourXY,
	}
}
