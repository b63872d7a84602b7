// Package requestid attaches a correlation ID to every HTTP request.
//
// Middleware reuses the client's X-Request-ID header when it is a short
// alphanumeric token and otherwise generates a UUID. The ID is stored in the
// request context, echoed in the response and, through LogExtractor, added to
// every log record written with that context.
package requestid
