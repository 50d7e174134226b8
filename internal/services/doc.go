// Package services defines the [Service] interface for the remote film catalog and implements it for Letterboxd.
//
// # Service Interface
//
// The sync engine depends only on the narrow [Lookup] and [ListService] interfaces, so tests can
// substitute in-memory fakes. [Service] adds authentication and list metadata for the CLI.
//
// # Letterboxd Implementation
//
// [LetterboxdService] signs every request with the API key, a random nonce, a timestamp and an
// HMAC-SHA256 signature over the method, URL and body. Member credentials are exchanged for an
// access token through the OAuth2 password grant; the [oauth2.Transport] then carries the bearer
// token and refreshes it automatically.
//
// # Error Handling
//
// Every failure is a [*shared.ServiceError] tagged with a kind:
//   - [shared.KindNoMatch] : search returned no film item
//   - [shared.KindTransient] : rate limited, server error, or network failure
//   - [shared.KindFatal] : [shared.ErrNotAuthenticated], [shared.ErrListNotFound], [shared.ErrUpdateRejected]
//
// Callers branch on [shared.KindOf] rather than on status codes.
package services
