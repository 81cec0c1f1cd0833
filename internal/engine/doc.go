// Package engine implements the in-memory reddit engine.
//
// All mutable state lives in a Store owned by a single Processor actor. Callers
// never touch the Store directly: they send command messages to the actor's
// mailbox and wait on a per-request future for the reply. The mailbox is FIFO,
// and the actor handles exactly one message at a time, so every command is
// validated, applied and indexed before the next one is looked at.
//
// Replies carry copies of entities. Nothing reachable from a reply aliases the
// Store.
package engine
