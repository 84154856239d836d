package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		userName  string
		email     string
		password  string
		wantField string
	}{
		{name: "valid", userName: "Alice", email: "  Alice@Example.COM ", password: "password123"},
		{name: "missing name", userName: "", email: "a@example.com", password: "password123", wantField: "name"},
		{name: "missing email", userName: "Alice", email: "", password: "password123", wantField: "email"},
		{name: "bad email", userName: "Alice", email: "not-an-email", password: "password123", wantField: "email"},
		{name: "short password", userName: "Alice", email: "a@example.com", password: "short", wantField: "password"},
		{name: "long password", userName: "Alice", email: "a@example.com", password: strings.Repeat("p", MaxPasswordLength+1), wantField: "password"},
		{name: "empty password", userName: "Alice", email: "a@example.com", password: "", wantField: "password"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			user, err := NewUser(tc.userName, tc.email, tc.password)
			if tc.wantField != "" {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tc.wantField, verr.Field)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", user.Email)
			summary := user.Summary()
			assert.Equal(t, user.ID, summary.ID)
			assert.Equal(t, "Alice", summary.Name)
		})
	}
}
