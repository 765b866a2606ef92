package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/thicket/pkg/domain"
)

// Record appends the payload as the next version in the entity's history.
// The version is max(existing)+1, or 1 for the first entry. Entries are
// immutable once written and never compacted.
func (e *Engine) Record(ctx context.Context, tenant, entityID string, payload domain.RawDocument) error {
	entries, err := e.stores.History.ListHistory(ctx, tenant, entityID)
	if err != nil {
		return fmt.Errorf("listing history for %s: %w", entityID, err)
	}

	highest := 0
	for _, entry := range entries {
		if entry.Version > highest {
			highest = entry.Version
		}
	}

	if err := e.stores.History.AppendHistory(ctx, tenant, entityID, highest+1, payload); err != nil {
		return fmt.Errorf("appending history for %s: %w", entityID, err)
	}
	e.metrics.CountHistoryRecord()
	return nil
}

// Undo deletes the highest-versioned entry and returns the payload of the
// one below it. The live state is not touched here; callers write the
// returned payload back themselves. Returns domain.ErrNothingToUndo when
// fewer than two entries exist.
func (e *Engine) Undo(ctx context.Context, tenant, entityID string) (domain.RawDocument, error) {
	entries, err := e.stores.History.ListHistory(ctx, tenant, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing history for %s: %w", entityID, err)
	}

	var highest, second *domain.HistoryEntry
	for i := range entries {
		entry := &entries[i]
		switch {
		case highest == nil || entry.Version > highest.Version:
			second = highest
			highest = entry
		case second == nil || entry.Version > second.Version:
			second = entry
		}
	}

	if highest == nil || second == nil {
		return nil, domain.ErrNothingToUndo
	}

	if err := e.stores.History.DeleteHistoryEntry(ctx, tenant, entityID, highest.Version); err != nil {
		return nil, fmt.Errorf("deleting history entry %d for %s: %w", highest.Version, entityID, err)
	}

	return second.Payload, nil
}

// History returns all entries for an entity sorted by the store, useful for
// inspection endpoints and the CLI.
func (e *Engine) History(ctx context.Context, tenant, entityID string) ([]domain.HistoryEntry, error) {
	return e.stores.History.ListHistory(ctx, tenant, entityID)
}
