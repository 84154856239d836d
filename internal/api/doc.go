// Package api handles incoming HTTP requests, request validation and response
// formatting. It adapts HTTP to the slot, swap and identity services and owns
// the mapping from service error kinds to status codes.
package api
