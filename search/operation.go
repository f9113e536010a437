// Package search implements the query-time side of wordprox: the query
// expression tree, its resolution against a read snapshot, and the ranking
// pipeline stages that narrow a candidate set.
package search

import (
	"fmt"
	"strings"
)

// Operation is a query expression. The variant set is closed: And, Or,
// Phrase and Query are the only implementations.
type Operation interface {
	isOperation()
	fmt.Stringer
}

// And matches documents matching every child expression.
type And struct {
	Children []Operation
}

// Or matches documents matching at least one child expression.
type Or struct {
	Children []Operation
}

// Phrase matches documents containing the words consecutively, in order.
type Phrase struct {
	Words []string
}

// Query is a leaf matching a single word, or every word starting with it
// when Prefix is set.
type Query struct {
	Word   string
	Prefix bool
}

func (And) isOperation()    {}
func (Or) isOperation()     {}
func (Phrase) isOperation() {}
func (Query) isOperation()  {}

func (op And) String() string {
	return fmt.Sprintf("AND(%s)", joinOperations(op.Children))
}

func (op Or) String() string {
	return fmt.Sprintf("OR(%s)", joinOperations(op.Children))
}

func (op Phrase) String() string {
	return fmt.Sprintf("PHRASE(%s)", strings.Join(op.Words, " "))
}

func (op Query) String() string {
	if op.Prefix {
		return fmt.Sprintf("%s*", op.Word)
	}
	return op.Word
}

func joinOperations(ops []Operation) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, ", ")
}
