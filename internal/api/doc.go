// Package api adapts HTTP requests to the task and authentication services.
// Handlers decode and validate input, read the authenticated principal from
// the request context, and translate service errors into status codes and
// safe client messages.
package api
