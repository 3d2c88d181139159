package session

import "time"

// Config holds session configuration.
type Config struct {
	// Progress is called during a flash operation to report milestones.
	Progress ProgressCallback

	// Info is called once after bootloader entry with the negotiated
	// protocol version and probed geometries.
	Info InfoCallback

	// Terminate is polled during flashing and deck updates; nil means
	// never terminate.
	Terminate TerminateCallback

	// Logger receives diagnostic and informational messages, including
	// per-deck skip notices.
	Logger Logger

	// ColdBootSettleDelay bridges the host-USB re-enumeration race after a
	// cold-boot scan finds a bootloader URI and before it is opened.
	ColdBootSettleDelay time.Duration

	// DeckRestartSettleDelay is how long to wait after resetting to
	// firmware before the device is expected to have re-enumerated in
	// application mode, ahead of the deck excursion.
	DeckRestartSettleDelay time.Duration

	// StartedPollInterval and StartedPollRetries bound the wait for a
	// deck's is_started flag during the deck excursion.
	StartedPollInterval time.Duration
	StartedPollRetries  int

	// KnownURI pins the bootloader link URI, skipping passive discovery on
	// cold boot and required for warm boot (the device is addressed at the
	// same URI in bootloader and application mode).
	KnownURI string
}

// defaultConfig returns the session defaults.
func defaultConfig() Config {
	return Config{
		ColdBootSettleDelay:    1 * time.Second,
		DeckRestartSettleDelay: 3 * time.Second,
		StartedPollInterval:    100 * time.Millisecond,
		StartedPollRetries:     50,
		Logger:                 nopLogger{},
	}
}

// Option configures a Manager.
type Option func(*Config)

// WithProgressCallback sets the progress milestone callback.
func WithProgressCallback(cb ProgressCallback) Option {
	return func(c *Config) { c.Progress = cb }
}

// WithInfoCallback sets the post-entry info callback.
func WithInfoCallback(cb InfoCallback) Option {
	return func(c *Config) { c.Info = cb }
}

// WithTerminateCallback sets the cooperative cancellation predicate.
func WithTerminateCallback(cb TerminateCallback) Option {
	return func(c *Config) { c.Terminate = cb }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithColdBootSettleDelay overrides the post-scan settle delay.
func WithColdBootSettleDelay(d time.Duration) Option {
	return func(c *Config) { c.ColdBootSettleDelay = d }
}

// WithDeckRestartSettleDelay overrides the post-reset re-enumeration delay
// ahead of the deck excursion.
func WithDeckRestartSettleDelay(d time.Duration) Option {
	return func(c *Config) { c.DeckRestartSettleDelay = d }
}

// WithStartedPollInterval overrides the per-retry delay while waiting for a
// deck to report is_started.
func WithStartedPollInterval(d time.Duration) Option {
	return func(c *Config) { c.StartedPollInterval = d }
}

// WithStartedPollRetries overrides the retry budget while waiting for a
// deck to report is_started.
func WithStartedPollRetries(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.StartedPollRetries = n
		}
	}
}

// WithKnownURI pins the bootloader link URI.
func WithKnownURI(uri string) Option {
	return func(c *Config) { c.KnownURI = uri }
}
