// # Voice Live Call-Center Relay
//
// Package voicelive relays real-time audio between telephony or web clients and the Azure Voice Live API. Each call runs one MediaRelay bridging the two transports, a process-wide ConnectionManager bounds the number of concurrent sessions, and a per-session tool registry answers model-initiated function calls. See examples/server for a complete composition root.
package voicelive
