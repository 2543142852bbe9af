// Package webhooks delivers domain events to subscriber endpoints.
//
// Delivery is at-least-once: every matched event gets a persisted ledger
// row before the first attempt, failed attempts reschedule on a fixed
// backoff table, and the retry budget is bounded. Exhaustion is an
// observable outcome in the ledger, never an application error.
package webhooks
