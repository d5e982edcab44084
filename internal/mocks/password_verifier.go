package mocks

import "errors"

// MockPasswordVerifier implements auth.PasswordVerifier. Passwords in
// Accepted always match, regardless of ShouldSucceed.
type MockPasswordVerifier struct {
	// Accepted maps a hashed password to the plaintext that matches it
	Accepted map[string]string

	// ShouldSucceed determines whether the password comparison should succeed
	ShouldSucceed bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	// CompareCalledWith stores the arguments passed to Compare for verification
	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	if want, ok := m.Accepted[hashedPassword]; ok && want == password {
		return nil
	}

	if m.ShouldSucceed {
		return nil
	}
	return errors.New("password mismatch")
}
