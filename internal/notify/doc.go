// Package notify renders notification payloads and delivers them over Web
// Push. Delivery is asynchronous and best-effort: the notification row in the
// database is the source of truth, a failed push only means the device did not
// get a heads-up.
package notify
