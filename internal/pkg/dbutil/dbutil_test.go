package dbutil

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestFinalizeRebindsPlaceholders(t *testing.T) {
	query, args := Finalize("SELECT a FROM t WHERE b = ? AND c = ?", []interface{}{"x", 3})
	require.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", query)
	require.Equal(t, []interface{}{"x", 3}, args)
}

func TestFinalizeRewritesLimitClause(t *testing.T) {
	query, args := Finalize("SELECT a FROM t WHERE b = ? LIMIT ?,?", []interface{}{"x", 10, 5})
	require.Equal(t, "SELECT a FROM t WHERE b = $1 LIMIT $2 OFFSET $3", query)
	// offset 10, count 5 becomes count first, offset second
	require.Equal(t, []interface{}{"x", 5, 10}, args)
}

func TestFinalizeLeavesPlainLimitAlone(t *testing.T) {
	query, args := Finalize("SELECT a FROM t LIMIT ?", []interface{}{7})
	require.Equal(t, "SELECT a FROM t LIMIT $1", query)
	require.Equal(t, []interface{}{7}, args)
}

func TestIsConflict(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	require.True(t, IsConflict(unique))
	require.True(t, IsConflict(fmt.Errorf("insert department: %w", unique)))
	require.False(t, IsConflict(&pq.Error{Code: "23503"}))
	require.False(t, IsConflict(fmt.Errorf("plain error")))
	require.False(t, IsConflict(nil))
}
