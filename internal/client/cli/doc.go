// Package cli provides the interactive notehub command-line client.
//
// It wires configuration, the local session database, the backend client,
// the identity provider and object storage, then runs a REPL. Every command
// is a view with an access requirement; the route guard decides whether it
// runs, waits for the session check, or redirects.
//
// Key features:
//   - Google sign-in and admin email/password login
//   - Browse, upload and download notes
//   - Buy question papers with wallet credit
//   - Admin moderation of notes, users and wallets
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, shell and runREPL for details.
package cli
