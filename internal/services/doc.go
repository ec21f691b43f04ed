// Package services is the REST client of the Acervo Mestre backend.
//
// # Raw Client
//
// [APIService] owns the base URL, the [http.Client] and an optional [oauth2.TokenSource].
// Every request is built by one function, which applies the bearer header whenever the token
// source yields a token, and every response goes through one decoder. Non-2xx responses
// become an [*APIError] carrying the status, the server detail and a per-call-site fallback.
//
// # Endpoints
//
// [AcervoService] implements [Catalog], one typed method per backend route: authentication,
// users, resources, playlists and tags. List endpoints accept both a bare JSON array and the
// paginated envelope.
//
// # Error Handling
//
// [APIError] matches the shared sentinels by status code:
//   - [shared.ErrNotAuthenticated] : 401, the session expired or was never established
//   - [shared.ErrForbidden] : 403
//   - [shared.ErrNotFound] : 404
//   - [shared.ErrConflict] : 409
//   - [shared.ErrServiceUnavailable] : 502 and 503
//   - [shared.ErrAPIRequest] : any non-2xx status
//
// Transport failures and client timeouts match [shared.ErrNetwork]; a cancelled context
// matches [shared.ErrCancelled]. Views render every error through [shared.UserMessage].
package services
