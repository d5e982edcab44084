// Package domain contains the core business entities, value objects, and
// validation rules of the task API, independent of storage and transport.
package domain
