// Package todo implements a minimal multi-user to-do list backend: user
// registration, password login issuing HS256 bearer tokens, and owner-scoped
// task CRUD over HTTP.
//
// Authentication flow:
//   - UserProvider verifies credentials against the persistent store and fails
//     closed: unknown users and wrong passwords surface as the same typed
//     credential error so callers cannot enumerate accounts.
//   - TokenService mints and validates self-contained signed claim sets. The
//     login path always passes an explicit TTL; tokens are never persisted and
//     never revoked before expiry.
//   - Auther is the authorization guard. CurrentUser re-loads the token's
//     subject from the store, so a structurally valid token for a deleted user
//     is rejected, and RequireActive blocks disabled accounts.
//
// Ownership checks on task mutations report "not found" rather than
// "forbidden" so the existence of other users' tasks is never revealed.
package todo
