package sqlresults

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := `INSERT INTO t (a, b) VALUES (?, ?)`
	require.Equal(t, q, (&Store{driver: "sqlite"}).rebind(q))
	require.Equal(t, q, (&Store{driver: "mysql"}).rebind(q))
	require.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2)`, (&Store{driver: "postgres"}).rebind(q))
}
