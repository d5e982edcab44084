// Package events carries task lifecycle notifications from the service layer
// to interested handlers.
//
// The service emits a TaskEvent after each committed mutation. Handlers are
// registered on an EventEmitter and run synchronously in registration order;
// a failing handler never undoes the mutation that produced the event.
package events
