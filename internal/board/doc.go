// Package board is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases: identity
// bootstrap, the write path with its rate limits, feeds, and notifications.
package board
