package domain

// HistoryEntry is one immutable snapshot in the append-only version log of
// a tree. Versions for an entity start at 1 and strictly increase by one
// per write; they are never reused. Entries accumulate without bound: the
// ledger performs no compaction, which is a known resource-growth
// characteristic of the system.
type HistoryEntry struct {
	EntityID string      `json:"recordId"`
	Version  int         `json:"versionNumber"`
	Payload  RawDocument `json:"data"`
}
