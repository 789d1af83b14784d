// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"glolotto/internal/platform/store"
)

// Queryer is the read and write surface SQL repos are bound to; writes are
// single statements, callers needing atomicity go through TxRunner
type Queryer = store.RowQuerier

// TxRunner can execute a function inside a transaction
type TxRunner = store.TxRunner

type (
	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)
