// Package condition turns nested configuration documents and the bracket
// lookup surface syntax of node conditions into a flat variable namespace
// that the expression evaluator can bind.
package condition
