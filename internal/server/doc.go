// Package server is the HTTP adapter: echo routes, handlers, and the
// request middleware chain (correlation IDs, actor resolution, per-IP rate
// limiting, structured error responses).
package server
