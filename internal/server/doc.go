// Package server is an in-memory stand-in for the Acervo Mestre REST backend.
//
// # Routes
//
// [Sandbox] mounts the same routes and payload shapes the real backend exposes on a chi
// router: /auth, /users, /recursos, /playlists and /tags. Errors are always a JSON object
// with a detail field, so the client error decoding is exercised unchanged.
//
// # Authentication
//
// Login checks bcrypt hashes held by the [Store] and returns an HS256 access token signed by
// the [Issuer] plus an opaque refresh token. Every other route runs behind
// [Sandbox.Authenticate], which resolves the token subject to an active account. User
// administration and tag writes additionally require a Gestor or Coordenador role.
//
// # Seed data
//
// [Seed] fills a store with fixed accounts ([AdminEmail], [TeacherEmail], [PendingEmail]),
// a tag taxonomy, generated resources of every structure and a few playlists. Content is
// generated with faker from a fixed seed so runs are reproducible.
//
// The sandbox backs `acervo sandbox` and the integration tests of the client packages.
package server
