// Package service contains the task API's use cases. It resolves the calling
// principal, applies the authorization policy from internal/authz, and
// orchestrates the stores defined in internal/store.
//
// Every operation takes the principal as an explicit argument; nothing is
// read from ambient request state. Mutations run inside a single database
// transaction obtained from the task repository.
//
// Access denial is reported as ErrAccessDenied, which wraps ErrTaskNotFound,
// so callers cannot tell an invisible task from a missing one.
package service
