// Package handlers implements the archive's HTTP API.
//
// Routes are registered on a gorilla/mux router by Handlers.Register:
//
//	GET    /version
//	GET    /health
//	POST   /files/directory
//	POST   /files/checksum
//	POST   /scanning/directory
//	POST   /scanning/metadata
//	GET    /tasks
//	GET    /tasks/{id}
//	DELETE /tasks/completed
//	GET    /trouble-shooting/missing-preview
//	POST   /trouble-shooting/missing-preview/fix
//	GET    /previews/{hash}
//
// Long-running work is never done in a handler. Scans, imports and preview
// repair are submitted to the task runner and answered with 202 and the task
// ID; clients poll /tasks/{id} for the outcome.
//
// Errors are returned as {"error": "..."} with a status derived from the
// error's kind: not_found is 404, invalid_input is 400, everything else 500.
package handlers
