// Package database implements the PostgreSQL-backed repositories. The write
// repositories own their transactions: denormalized counters, the moderation
// gate, and notification rows are settled in the same transaction as the
// triggering write, so readers never observe a half-applied write.
package database
