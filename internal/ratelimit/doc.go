// Package ratelimit enforces per-actor write ceilings over a sliding window,
// backed by Redis sorted sets. Each action kind (post, comment, vote) has its
// own ceiling; the check and the recording happen atomically in a Lua script
// so concurrent requests cannot sneak past the limit.
package ratelimit
