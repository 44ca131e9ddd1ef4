// Package relay carries encoded events over NATS.
//
// Ownership boundary:
// - subject naming per event target
// - publish/subscribe of one record per message (no batching)
// - connection TLS settings
//
// Each NATS message body is exactly the output of event.Encode, outer length
// prefix included.
package relay
