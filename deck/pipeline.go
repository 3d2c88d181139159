package deck

import (
	"context"
	"sort"
	"time"

	"github.com/bitcraze/cfloader/bundle"
	"github.com/bitcraze/cfloader/ferrors"
	"github.com/bitcraze/cfloader/target"
)

// Collaborators are the session-level operations the pipeline calls out to
// in order to perform the warm-boot excursion. Session supplies these so
// deck has no direct dependency on cloader or link.
type Collaborators struct {
	// ResetToFirmwareAndClose resets the device to application firmware and
	// releases the bootloader link.
	ResetToFirmwareAndClose func(ctx context.Context) error

	// OpenAppClient opens an application-mode session once the device has
	// re-enumerated.
	OpenAppClient func(ctx context.Context) (AppClient, error)

	// CloseAppClient releases the application-mode session.
	CloseAppClient func(ctx context.Context, client AppClient) error

	// ReenterBootloader performs a warm bootloader entry, restoring the
	// mode the session started in.
	ReenterBootloader func(ctx context.Context) error
}

// Pipeline runs the deck sub-update excursion.
type Pipeline struct {
	Collaborators

	// RestartSettleDelay is how long to wait after resetting to firmware
	// before the device is expected to have re-enumerated. Defaults to 3s.
	RestartSettleDelay time.Duration

	// StartedPollInterval and StartedPollRetries bound the wait for
	// deck.IsStarted. Default 100ms / 50 retries (a 5s budget) in place of
	// the unbounded wait of the source this pipeline is modeled on.
	StartedPollInterval time.Duration
	StartedPollRetries  int

	Progress  Callback
	Terminate TerminateFunc
	Logger    Logger

	// Sleep is injectable for tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// New returns a Pipeline with the documented defaults, wired to c.
func New(c Collaborators) *Pipeline {
	return &Pipeline{
		Collaborators:       c,
		RestartSettleDelay:  3 * time.Second,
		StartedPollInterval: 100 * time.Millisecond,
		StartedPollRetries:  50,
		Logger:              nopLogger{},
		Sleep:               time.Sleep,
	}
}

// Run performs the deck excursion: reset to firmware, enumerate decks,
// write each eligible one, then reenter bootloader mode. selection is the
// caller's target allow-filter; an empty selection means every deck in
// scope. On any error the device is left wherever the failing step left it;
// callers are expected to surface the error and let the caller's own
// cleanup path call close().
func (p *Pipeline) Run(ctx context.Context, artifacts []bundle.Artifact, selection []target.Descriptor) error {
	p.report("Restarting firmware to update decks.", 0)

	if err := p.ResetToFirmwareAndClose(ctx); err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	p.Sleep(p.RestartSettleDelay)

	client, err := p.OpenAppClient(ctx)
	if err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}

	mgr, err := client.DeckMemoryManager(ctx)
	if err != nil {
		_ = p.CloseAppClient(ctx, client)
		return ferrors.New(ferrors.KindLinkError, err)
	}

	decks, err := mgr.QueryDecks(ctx)
	if err != nil {
		_ = p.CloseAppClient(ctx, client)
		return ferrors.New(ferrors.KindLinkError, err)
	}

	if len(decks) > 0 {
		if err := p.flashDecks(ctx, mgr, decks, artifacts, selection); err != nil {
			_ = p.CloseAppClient(ctx, client)
			return err
		}
	}

	if err := p.CloseAppClient(ctx, client); err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}

	if err := p.ReenterBootloader(ctx); err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	return nil
}

func (p *Pipeline) flashDecks(ctx context.Context, mgr DeckMemoryManager, decks map[int]Deck, artifacts []bundle.Artifact, selection []target.Descriptor) error {
	indices := make([]int, 0, len(decks))
	for i := range decks {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, index := range indices {
		if p.Terminate != nil && p.Terminate() {
			return ferrors.New(ferrors.KindTerminated, errTerminated{})
		}

		rec := decks[index]
		td := target.Descriptor{Platform: target.PlatformDeck, Target: rec.Name, Kind: target.KindFW}

		if len(selection) > 0 && !target.Contains(selection, td) {
			p.Logger.Debug("deck skipped: not selected", "deck", rec.Name)
			continue
		}

		artifact, ok := findArtifact(artifacts, td)
		if !ok {
			p.Logger.Info("deck skipped: no matching artifact in bundle", "deck", rec.Name)
			continue
		}

		rec, started := p.waitUntilStarted(ctx, mgr, index, rec)
		if !started {
			p.Logger.Info("deck skipped: did not start within poll budget", "deck", rec.Name)
			continue
		}

		if !rec.SupportsFWUpgrade {
			p.Logger.Info("deck skipped: does not support firmware upgrade", "deck", rec.Name)
			continue
		}
		if !rec.IsFWUpgradeRequired {
			p.Logger.Info("deck skipped: firmware upgrade not required", "deck", rec.Name)
			continue
		}
		if !rec.IsBootloaderActive {
			p.Logger.Info("deck skipped: bootloader not active", "deck", rec.Name)
			continue
		}

		if ok := mgr.WriteSync(ctx, index, 0, artifact.Bytes); !ok {
			return ferrors.Newf(ferrors.KindDeckUpdateFailed, "write_sync failed for deck %q", rec.Name)
		}
		p.report("Deck "+rec.Name+" updated.", 0)
	}
	return nil
}

func (p *Pipeline) waitUntilStarted(ctx context.Context, mgr DeckMemoryManager, index int, rec Deck) (Deck, bool) {
	for attempt := 0; attempt < p.StartedPollRetries; attempt++ {
		if rec.IsStarted {
			return rec, true
		}
		p.Sleep(p.StartedPollInterval)
		next, err := mgr.Refresh(ctx, index)
		if err != nil {
			return rec, false
		}
		rec = next
	}
	return rec, rec.IsStarted
}

func (p *Pipeline) report(message string, percent int) {
	if p.Progress != nil {
		p.Progress(Progress{Message: message, Percent: percent})
	}
}

func findArtifact(artifacts []bundle.Artifact, td target.Descriptor) (bundle.Artifact, bool) {
	for _, a := range artifacts {
		if a.Target.Equal(td) {
			return a, true
		}
	}
	return bundle.Artifact{}, false
}

type errTerminated struct{}

func (errTerminated) Error() string { return "deck flashing terminated by caller" }
