// Package hueble manages persistent sessions with Philips Hue Bluetooth
// Low Energy lights without a bridge.
//
// A Light is one session: it owns the connect/pair/disconnect lifecycle,
// reconnects automatically after unexpected link drops, caches the light's
// last known state, and keeps that cache in sync through GATT notifications
// and explicit polling. Control and poll methods connect on demand, retry
// transient failures within a bounded budget, and raise typed errors from
// the package's common error family.
//
// Radio I/O goes through the Transport capability interface; the goble
// subpackage implements it over github.com/go-ble/ble. Attribute payloads
// are encoded and decoded by the pure codecs in the attr subpackage.
//
// Also included in cmd/hueble is a small CLI for polling, controlling and
// watching a light from a terminal.
package hueble

// Version of this library.
const Version = "0.1.0"
