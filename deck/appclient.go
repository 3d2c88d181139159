// Package deck implements the sub-update pipeline: a warm-boot excursion
// into application mode that enumerates deck memories and writes per-deck
// firmware payloads, then returns the device to bootloader mode.
package deck

import "context"

// Deck is a snapshot of one deck-memory record, as returned by
// DeckMemoryManager.QueryDecks or DeckMemoryManager.Refresh.
type Deck struct {
	Index               int
	Name                string
	IsStarted           bool
	SupportsFWUpgrade   bool
	IsFWUpgradeRequired bool
	IsBootloaderActive  bool
}

// DeckMemoryManager is the application-mode capability the pipeline needs:
// enumerate decks, re-query one deck's state, and write its payload.
type DeckMemoryManager interface {
	// QueryDecks enumerates currently attached decks, keyed by index.
	QueryDecks(ctx context.Context) (map[int]Deck, error)

	// Refresh re-queries one deck's record, used to poll IsStarted.
	Refresh(ctx context.Context, index int) (Deck, error)

	// WriteSync writes data at offset to the deck at index, returning
	// false on device-reported failure.
	WriteSync(ctx context.Context, index int, offset uint32, data []byte) bool
}

// AppClient is the application-mode session the pipeline opens for the
// duration of the deck excursion.
type AppClient interface {
	DeckMemoryManager(ctx context.Context) (DeckMemoryManager, error)
}
