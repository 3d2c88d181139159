package session

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"github.com/bitcraze/cfloader/bundle"
	"github.com/bitcraze/cfloader/cloader"
	"github.com/bitcraze/cfloader/deck"
	"github.com/bitcraze/cfloader/ferrors"
	"github.com/bitcraze/cfloader/flash"
	"github.com/bitcraze/cfloader/link"
	"github.com/bitcraze/cfloader/protocol"
	"github.com/bitcraze/cfloader/target"
)

// Mode is the device-side mode a Manager believes it is addressing.
type Mode string

const (
	// ModeBootloader is the mode Manager requires for Flash, GetTarget, and
	// ResetToFirmware.
	ModeBootloader Mode = "bootloader"
	// ModeFirmware is the mode left behind by a successful ResetToFirmware.
	ModeFirmware Mode = "firmware"
	// ModeClosed is the initial mode, and the mode after Close.
	ModeClosed Mode = "closed"
)

// AppClientFactory opens an application-mode session once the device has
// re-enumerated in firmware mode, for the duration of a deck excursion.
type AppClientFactory func(ctx context.Context) (deck.AppClient, error)

// Manager is the firmware-upgrade core's single entry point: it owns the
// bootloader link, negotiates protocol and geometry, and sequences the
// flashing engine and deck pipeline against them. A Manager is not safe for
// concurrent use; its operations are meant to be driven one at a time from a
// single goroutine, matching the single bootloader link it owns.
type Manager struct {
	adapter link.Adapter
	cl      *cloader.Cloader
	engine  *flash.Engine
	bundles *bundle.Reader
	appFct  AppClientFactory

	cfg  Config
	mode Mode

	version  protocol.Version
	registry *target.Registry
	uri      string
}

// New returns a Manager addressing adapter, reading bundle archives through
// fs, and opening application-mode sessions through appFct for deck
// excursions. appFct may be nil if the caller never intends to flash deck
// targets.
func New(adapter link.Adapter, fs afero.Fs, appFct AppClientFactory, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cl := cloader.New(adapter)
	return &Manager{
		adapter: adapter,
		cl:      cl,
		engine:  flash.New(cl),
		bundles: bundle.NewReader(fs),
		appFct:  appFct,
		cfg:     cfg,
		mode:    ModeClosed,
		uri:     cfg.KnownURI,
	}
}

// Mode returns the Manager's current belief about the device's mode.
func (m *Manager) Mode() Mode { return m.mode }

// StartBootloader brings the device into bootloader mode and negotiates
// protocol version and geometry. On a warm boot the device is assumed to
// already be running application firmware at the Manager's known URI: it is
// reset into the bootloader in place. On a cold boot the Manager performs
// passive discovery (unless KnownURI was configured) and waits out
// ColdBootSettleDelay for the device to re-enumerate before opening it.
func (m *Manager) StartBootloader(ctx context.Context, warm bool) error {
	if warm {
		if m.uri == "" {
			return ferrors.New(ferrors.KindLinkError, notConnectedError{})
		}
		if err := m.cl.Open(ctx, m.uri); err != nil {
			return err
		}
		if err := m.cl.ResetToBootloader(ctx, target.IDNRF51); err != nil {
			return err
		}
	} else {
		uri := m.uri
		if uri == "" {
			scanned, err := cloader.ScanForBootloader(ctx, m.adapter)
			if err != nil {
				return err
			}
			uri = scanned
			time.Sleep(m.cfg.ColdBootSettleDelay)
		}
		if err := m.cl.Open(ctx, uri); err != nil {
			return err
		}
		m.uri = uri
	}

	version, reg, err := m.cl.CheckLinkAndGetInfo(ctx)
	if err != nil {
		return err
	}
	m.version = version
	m.registry = reg
	m.mode = ModeBootloader

	if m.cfg.Info != nil {
		geometries := make([]target.Geometry, 0, 2)
		if g, err := reg.ByID(target.IDSTM32); err == nil {
			geometries = append(geometries, g)
		}
		if g, err := reg.ByID(target.IDNRF51); err == nil {
			geometries = append(geometries, g)
		}
		m.cfg.Info(uint8(version), geometries)
	}
	return nil
}

// platformForVersion returns the manifest platform identifier matching the
// negotiated protocol version.
func (m *Manager) platformForVersion() target.Platform {
	if protocol.IsCF2(m.version) {
		return target.PlatformCF2
	}
	return target.PlatformCF1
}

// GetTarget returns the geometry probed for targetID during StartBootloader.
func (m *Manager) GetTarget(targetID uint8) (target.Geometry, error) {
	if m.mode != ModeBootloader {
		return target.Geometry{}, ferrors.New(ferrors.KindLinkError, &ModeError{Want: ModeBootloader, Have: m.mode})
	}
	return m.registry.ByID(targetID)
}

// Flash reads the bundle (or raw image) at path, flashes every in-scope
// flash-MCU artifact through the flashing engine, and, if any deck targets
// are in scope, runs the deck excursion. selection filters which targets are
// flashed; an empty selection means everything the bundle offers. The deck
// excursion only runs when warm is true: a cold boot has no application-mode
// session to address decks through, so it is skipped with a diagnostic
// instead. Flash does not reset the device to firmware when it returns;
// callers that want the device left in application mode should call
// ResetToFirmware themselves, or use FlashFull.
func (m *Manager) Flash(ctx context.Context, path string, selection []target.Descriptor, warm bool) error {
	if m.mode != ModeBootloader {
		return ferrors.New(ferrors.KindLinkError, &ModeError{Want: ModeBootloader, Have: m.mode})
	}

	platform := m.platformForVersion()

	artifacts, err := m.bundles.Read(path)
	if err != nil {
		return err
	}
	if artifacts == nil {
		if len(selection) != 1 {
			return ferrors.Newf(ferrors.KindBundleFormatError, "raw binary image requires exactly one target, got %d", len(selection))
		}
		raw, err := m.bundles.ReadRaw(path)
		if err != nil {
			return err
		}
		artifacts = []bundle.Artifact{{Bytes: raw, Target: selection[0]}}
	}

	var flashArtifacts, deckArtifacts []bundle.Artifact
	for _, a := range artifacts {
		if len(selection) > 0 && !target.Contains(selection, a.Target) {
			continue
		}
		switch a.Target.Platform {
		case platform:
			flashArtifacts = append(flashArtifacts, a)
		case target.PlatformDeck:
			deckArtifacts = append(deckArtifacts, a)
		}
	}

	if err := m.flashArtifacts(ctx, flashArtifacts); err != nil {
		return err
	}

	if len(selection) == 0 || hasDeckSelection(selection) {
		if !warm {
			m.cfg.Logger.Info("deck update skipped on cold boot")
		} else if err := m.runDeckPipeline(ctx, deckArtifacts, selection); err != nil {
			return err
		}
	}
	return nil
}

func hasDeckSelection(selection []target.Descriptor) bool {
	for _, d := range selection {
		if d.Platform == target.PlatformDeck {
			return true
		}
	}
	return false
}

func (m *Manager) flashArtifacts(ctx context.Context, artifacts []bundle.Artifact) error {
	total := len(artifacts)
	for i, a := range artifacts {
		g, err := m.registry.ByName(a.Target.Target)
		if err != nil {
			return ferrors.New(ferrors.KindBundleFormatError, err)
		}
		var terminate flash.TerminateFunc
		if m.cfg.Terminate != nil {
			terminate = flash.TerminateFunc(m.cfg.Terminate)
		}
		opts := flash.Options{
			Progress:       m.flashProgress,
			Terminate:      terminate,
			ArtifactIndex:  i + 1,
			TotalArtifacts: total,
		}
		if err := m.engine.Flash(ctx, g, a.Bytes, opts); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) flashProgress(p flash.Progress) {
	if m.cfg.Progress != nil {
		m.cfg.Progress(p.Message, p.Percent)
	}
}

func (m *Manager) runDeckPipeline(ctx context.Context, artifacts []bundle.Artifact, selection []target.Descriptor) error {
	if m.appFct == nil {
		return ferrors.New(ferrors.KindLinkError, notConnectedError{})
	}

	pipeline := deck.New(deck.Collaborators{
		ResetToFirmwareAndClose: func(ctx context.Context) error {
			if err := m.ResetToFirmware(ctx); err != nil {
				return err
			}
			return m.cl.Close()
		},
		OpenAppClient:     func(ctx context.Context) (deck.AppClient, error) { return m.appFct(ctx) },
		CloseAppClient:    func(ctx context.Context, client deck.AppClient) error { return nil },
		ReenterBootloader: func(ctx context.Context) error { return m.StartBootloader(ctx, true) },
	})
	pipeline.RestartSettleDelay = m.cfg.DeckRestartSettleDelay
	pipeline.StartedPollInterval = m.cfg.StartedPollInterval
	pipeline.StartedPollRetries = m.cfg.StartedPollRetries
	pipeline.Logger = deckLoggerAdapter{m.cfg.Logger}
	pipeline.Progress = func(p deck.Progress) {
		if m.cfg.Progress != nil {
			m.cfg.Progress(p.Message, p.Percent)
		}
	}
	if m.cfg.Terminate != nil {
		pipeline.Terminate = deck.TerminateFunc(m.cfg.Terminate)
	}

	return pipeline.Run(ctx, artifacts, selection)
}

// ResetToFirmware commands the device back into application firmware,
// addressing the reset at the NRF51 for the CF2 protocol and at the STM32
// otherwise. It does not close the link.
func (m *Manager) ResetToFirmware(ctx context.Context) error {
	if m.mode != ModeBootloader {
		return ferrors.New(ferrors.KindLinkError, &ModeError{Want: ModeBootloader, Have: m.mode})
	}
	targetID := target.IDSTM32
	if protocol.IsCF2(m.version) {
		targetID = target.IDNRF51
	}
	if err := m.cl.ResetToFirmware(ctx, targetID); err != nil {
		return err
	}
	m.mode = ModeFirmware
	return nil
}

// FlashFull is the single-call upgrade path: StartBootloader, then Flash,
// then ResetToFirmware, leaving the device running application firmware.
func (m *Manager) FlashFull(ctx context.Context, warm bool, path string, selection []target.Descriptor) error {
	if err := m.StartBootloader(ctx, warm); err != nil {
		return err
	}
	if err := m.Flash(ctx, path, selection, warm); err != nil {
		return err
	}
	return m.ResetToFirmware(ctx)
}

// Close releases the bootloader link. Safe to call regardless of mode.
func (m *Manager) Close() error {
	err := m.cl.Close()
	m.mode = ModeClosed
	return err
}

type deckLoggerAdapter struct{ Logger Logger }

func (a deckLoggerAdapter) Debug(msg string, args ...any) { a.Logger.Debug(msg, args...) }
func (a deckLoggerAdapter) Info(msg string, args ...any)  { a.Logger.Info(msg, args...) }
func (a deckLoggerAdapter) Error(msg string, args ...any) { a.Logger.Error(msg, args...) }
