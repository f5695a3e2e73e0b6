package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAttendance mirrors one attendance punch to the time-series store.
//
// The write is non-blocking; points are batched and sent asynchronously.
// verify_mode and status are tagged (low cardinality, both are small enums
// on real terminals) so dashboards can break punches down by method and
// direction without scanning fields.
//
// The point timestamp is the server-side ingestion time. Device-reported
// timestamps are opaque text and cannot be trusted as a time axis.
//
// Example:
//
//	client.WriteAttendance("CJDE193560303", "1001", 15, 0)
func (c *Client) WriteAttendance(deviceSN, userID string, verifyMode, status int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"attendance",
		map[string]string{
			"device_sn":   deviceSN,
			"verify_mode": strconv.Itoa(verifyMode),
			"status":      strconv.Itoa(status),
		},
		map[string]interface{}{
			"user_id": userID,
			"count":   1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
