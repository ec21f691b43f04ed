// Package repositories implements SQLite persistence for the client session.
//
// [TokenRepository] is a small key/value table holding the bearer credentials under the fixed
// keys [KeyAccessToken] and [KeyRefreshToken]. It survives restarts of the CLI and the TUI, so
// a login in one is visible to the other. The table is created by the embedded migrations in
// the shared package.
//
// Values are stored as-is. Writes of both tokens happen in one transaction so a crash never
// leaves a refresh token without its access token.
package repositories
