// Package store defines interfaces for task and user persistence.
// These interfaces keep the service layer independent of the relational
// store; internal/platform/postgres provides the implementations.
package store
