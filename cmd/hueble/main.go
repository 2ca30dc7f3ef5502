package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hueble",
	Short: "Control Philips Hue Bluetooth lights without a bridge",
	Long: `Philips Hue BLE command-line tool that provides:

- Poll the full state of a light (power, brightness, colour, identity)
- Turn a light on/off, set brightness, colour temperature, XY colour or name
- Watch a light live via GATT notifications
- Read identity metadata (manufacturer, model, firmware, Zigbee address)

The tool pairs with the light on first contact; put the light in pairing
mode (power cycle it or use the Hue app) if pairing is rejected.`,
	Version: formatVersion(version),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Ctrl+C is a normal exit, not an error - exit silently
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	// Silence Cobra's "Error:" prefix - main() prints clean errors
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(infoCmd)

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config with session tunables")

	// Add -v as a short flag for --version
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")
}
