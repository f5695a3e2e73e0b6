package mqtt

import "fmt"

// Topic prefixes for the fleet event hierarchy.
//
// All topics live under a single "adms" root:
//
//	adms/system/status               — retained server online/offline
//	adms/event/{type}                — fleet-wide events by type
//	adms/device/{sn}/event/{type}    — per-device events
const (
	// TopicPrefix is the root of all topics published by the server.
	TopicPrefix = "adms"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "adms/system"
)

// Topics provides builders for fleet MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// SystemStatus returns the retained server status topic.
//
// Example: adms/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// Event returns the fleet-wide topic for an event type.
//
// Example: adms/event/command.completed
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, eventType)
}

// DeviceEvent returns the per-device topic for an event type.
//
// Example: adms/device/CJDE193560303/event/attendance.recorded
func (Topics) DeviceEvent(sn, eventType string) string {
	return fmt.Sprintf("%s/device/%s/event/%s", TopicPrefix, sn, eventType)
}
