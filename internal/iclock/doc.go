// Package iclock implements the push-protocol conversation with terminals.
//
// Terminals initiate everything: they poll for commands, push attendance and
// template data, and acknowledge executed commands by echoing the command
// text. Session ties the device, command and attendance repositories together
// into those four exchanges, and the wire helpers render the plain-text
// bodies the terminals expect.
package iclock
