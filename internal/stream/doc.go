// Package stream serves hub snapshots over HTTP.
//
//	GET /ws        websocket; one "snapshot" message per poll cycle
//	GET /snapshot  the latest snapshot as JSON
//	GET /health    liveness with subscriber count and last cycle
//
// /ws and /snapshot accept ?sources=cpu,memory to trim the payload.
// Websocket clients may send {"type":"ping"}, {"type":"latest"} or
// {"type":"refresh"}.
package stream
