// Package auth issues and verifies HS256 bearer tokens and checks passwords
// at login. Tokens carry the username as subject and the user's role names as
// a single comma-joined "roles" claim.
package auth
