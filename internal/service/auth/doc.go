// Package auth verifies the HS256 bearer tokens that authenticate API
// requests. The user id is read from the uid claim, falling back to sub.
package auth
