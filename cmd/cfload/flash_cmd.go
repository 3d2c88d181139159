package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bitcraze/cfloader/ferrors"
	"github.com/bitcraze/cfloader/internal/logging"
	"github.com/bitcraze/cfloader/link"
	"github.com/bitcraze/cfloader/session"
	"github.com/bitcraze/cfloader/target"
)

var flashCmd = &cobra.Command{
	Use:   "flash <bundle-or-bin>",
	Short: "Flash a firmware bundle or raw binary, resetting to application mode when done",
	Args:  cobra.ExactArgs(1),
	RunE:  runFlash,
}

func init() {
	flashCmd.Flags().BoolVar(&flagWarm, "warm", false, "perform a warm boot (device already running firmware) instead of a cold USB-reset boot")
	flashCmd.Flags().StringSliceVar(&flagTargets, "target", nil, "restrict flashing to platform/target/kind selectors (e.g. cf2/stm32/fw); repeatable, default is everything the bundle offers")
}

func runFlash(cmd *cobra.Command, args []string) error {
	path := args[0]
	selection, err := parseSelection(flagTargets)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()
	logger := logging.New(os.Stderr, viper.GetString("log_level")).With("session", sessionID)

	adapter := link.NewCRCGuard(link.NewSerialAdapter(1000000), 3)

	mgr := session.New(adapter, afero.NewOsFs(), nil,
		session.WithKnownURI(viper.GetString("uri")),
		session.WithProgressCallback(func(msg string, pct int) {
			fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s\n", pct, msg)
		}),
		session.WithInfoCallback(func(version uint8, geometries []target.Geometry) {
			logger.Info("bootloader connected", "protocol_version", version, "targets", len(geometries))
		}),
		session.WithLogger(logger),
	)
	defer mgr.Close()

	if err := mgr.FlashFull(context.Background(), flagWarm, path, selection); err != nil {
		logger.Error("flash failed", "error", err)
		os.Exit(ferrors.ExitCode(err))
	}
	return nil
}

// parseSelection turns "platform/target/kind" selector strings into
// target.Descriptor values.
func parseSelection(selectors []string) ([]target.Descriptor, error) {
	if len(selectors) == 0 {
		return nil, nil
	}
	out := make([]target.Descriptor, 0, len(selectors))
	for _, s := range selectors {
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid --target %q, want platform/target/kind", s)
		}
		out = append(out, target.Descriptor{
			Platform: target.Platform(parts[0]),
			Target:   parts[1],
			Kind:     target.Kind(parts[2]),
		})
	}
	return out, nil
}
