// Package domain contains the core data types of the Thicket engine:
// trees, nodes, configurations, computed views and history entries.
//
// The types are deliberately dependency-free. Storage adapters persist
// trees as loosely-typed documents (RawDocument); the typed structs here
// are what the engine and its consumers work with after decoding.
package domain
