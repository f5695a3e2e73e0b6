// Package influxdb provides the optional attendance metrics mirror.
//
// When enabled, every ingested attendance punch is also written to InfluxDB
// as a point in the "attendance" measurement, tagged by device serial,
// verify mode and status. SQLite remains the system of record; this mirror
// exists only for dashboarding and is safe to disable or lose.
//
// Writes are batched and non-blocking, so a slow or absent InfluxDB never
// stalls protocol handlers. Async write failures surface through the
// SetOnError callback.
package influxdb
