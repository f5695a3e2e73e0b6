// Package events defines the structured fleet event model and its sinks.
//
// Protocol and repository code emit events through an injected Sink instead
// of logging side effects directly. Sinks fan out to the structured log, the
// optional MQTT broker and the optional InfluxDB mirror; all of them are
// fire-and-forget so observability can never fail a device request.
package events
