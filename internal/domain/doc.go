// Package domain holds the core model types, the repository and service
// interfaces the application layer consumes, and the pure rules of the board:
// vote values, moderation thresholds, milestone crossings, and notification
// snapshot construction. It has no dependencies on storage or transport.
package domain
