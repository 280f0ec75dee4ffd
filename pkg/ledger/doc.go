// Package ledger persists usage records to SQLite for offline cost
// reporting.
//
// A Mirror copies new records from a cost.Tracker into a Store on a fixed
// interval, so hot-path request routing stays in memory while durable
// history accumulates behind it. A Pruner with a cron Scheduler enforces
// a retention window on the stored rows.
package ledger
