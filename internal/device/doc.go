// Package device implements the terminal registry.
//
// Devices are created implicitly: the first protocol request from an unknown
// serial number registers it, and every later request refreshes last_seen and
// overwrites whatever the device reported about itself. There is no explicit
// enrolment step and no stored online flag; presence is derived from last_seen
// against a configurable freshness window at read time.
package device
