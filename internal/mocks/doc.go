// Package mocks provides centralized test doubles for the store and auth
// interfaces.
//
// The store doubles are in-memory and stateful, so service and handler tests
// can exercise visibility and filtering rules end to end. Every method also
// has a function field that, when set, replaces the default behavior:
//
//	users := mocks.NewMockUserStore()
//	alice := users.AddUser("alice", "ROLE_USER")
//	tasks := mocks.NewMockTaskStore(users)
//	tasks.GetByIDFn = func(ctx context.Context, id int64) (*domain.Task, error) {
//	    return nil, errors.New("database unavailable")
//	}
package mocks
