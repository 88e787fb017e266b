package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendFor(t *testing.T) {
	cases := map[string]Backend{
		"mongodb://localhost:27017":                 BackendMongo,
		"mongodb+srv://user:pw@cluster.example.net": BackendMongo,
		"postgres://user:pw@localhost:5432/app":     BackendPostgres,
		"postgresql://localhost/app?sslmode=off":    BackendPostgres,
	}
	for in, want := range cases {
		got, err := BackendFor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestBackendFor_Unsupported(t *testing.T) {
	for _, in := range []string{"file:dev.sqlite", "mysql://localhost/app", "", "://bad"} {
		_, err := BackendFor(in)
		assert.Error(t, err, in)
	}
}

func TestSessionStore_CloseWithoutConnection(t *testing.T) {
	var s SessionStore
	assert.NoError(t, s.Close(t.Context()))
}
