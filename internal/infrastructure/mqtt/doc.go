// Package mqtt provides the optional fleet-event publisher.
//
// ADMS terminals never speak MQTT; this client exists purely so external
// dashboards and automations can observe the fleet without polling the
// operator API. The server publishes lifecycle events (device seen, command
// queued/sent/resolved, attendance recorded) and maintains a retained
// online/offline status with a Last Will for crash detection.
//
// The client is publish-only. There is no subscription machinery because
// nothing in the system consumes inbound MQTT.
//
// # Configuration
//
//	mqtt:
//	  enabled: true
//	  broker:
//	    host: "localhost"
//	    port: 1883
//	    client_id: "adms-core"
//	  qos: 1
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Event("device.seen")
//	client.PublishEvent(topic, payload)
package mqtt
