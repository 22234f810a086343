// Package receiver fetches updates from the Bot API via long polling.
//
// PollingClient repeatedly invokes getUpdates with an offset one past the
// highest update id seen, blocking server-side until updates arrive or the
// poll timeout elapses. Each update is handed to the configured UpdateSink
// strictly in ascending id order; the offset advances only after the sink
// returns, so a crash mid-processing redelivers that update on restart
// (at-least-once delivery).
//
// The loop stops between iterations when the context is cancelled or
// Stop is called; it does not interrupt an in-flight long poll.
package receiver
