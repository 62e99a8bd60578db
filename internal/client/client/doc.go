// Package client contains client-side building blocks for the notehub backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see Client and the narrower AuthAPI,
//     NotesAPI, AdminAPI and PapersAPI interfaces).
//  2. A REST/JSON implementation (see HTTPClient) that attaches the caller's
//     bearer token, decodes the backend's {data, message} envelope and maps
//     HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the CLI's
//     session artifact store, applying embedded goose migrations to SQLite.
//
// # Error Handling
//
// Non-2xx replies are returned as *RequestError carrying the backend message.
// It unwraps to ErrUnauthorized, ErrNotFound or ErrUnavailable where the status
// warrants, so callers can match with errors.Is. Transport failures wrap
// ErrUnavailable.
//
// Tokens are never stored here. Every call takes the bearer token explicitly
// so callers fetch a fresh one per request.
package client
