// Package models defines the entities of the Acervo Mestre catalog and the view-models built from them.
//
// The package contains three categories of types:
//
// 1. Data Transfer Objects (DTOs): structs mirroring the REST payloads
//   - [User] : accounts, with the heterogeneous role shapes folded into one field
//   - [Resource] : learning resources (uploaded file, external link or markdown note)
//   - [Playlist] : ordered collections of [PlaylistItem]
//   - [Tag] : taxonomy entries
//   - [TokenPair] and [Page] : login and pagination envelopes
//
// 2. View-models: [Card] and [Descriptor], derived from DTOs by [ResourceCard], [PlaylistCard]
// and [Classify]. Every view renders resource types through [Classify] only.
//
// 3. Forms: [ResourceForm], [PlaylistForm], [UserForm] and [PasswordForm], validated before any
// network call. Validation failures carry localized messages (see [shared.UserMessage]).
package models
