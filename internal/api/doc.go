// Package api contains the HTTP handlers, request models and error mapping
// for the taskboard REST interface. Handlers decode and validate payloads,
// resolve the authenticated principal from the request context, call the
// service layer, and translate results into the uniform response envelope.
package api
