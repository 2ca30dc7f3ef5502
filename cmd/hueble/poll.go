package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	hueble "github.com/flip-dots/hueble-go"
	"github.com/flip-dots/hueble-go/goble"
)

const exampleAddress = "AA:BB:CC:DD:EE:FF"

// pollCmd represents the poll command
var pollCmd = &cobra.Command{
	Use:   "poll <address>",
	Short: "Connect to a light and poll its full state",
	Long: fmt.Sprintf(`Connects to a Hue BLE light, pairs if necessary, polls every
supported attribute and prints the result.

Examples:
  hueble poll %s
  hueble poll %s --timeout 60s`, exampleAddress, exampleAddress),
	Args: cobra.ExactArgs(1),
	RunE: runPoll,
}

var pollTimeout time.Duration

func init() {
	pollCmd.Flags().DurationVar(&pollTimeout, "timeout", 60*time.Second, "Overall operation timeout")
	pollCmd.Flags().BoolP("verbose", "", false, "Enable debug logging")
}

func runPoll(cmd *cobra.Command, args []string) error {
	logger, err := configureLogger(cmd, "verbose")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	light := goble.NewLight(args[0], cfg, logger)
	defer light.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), pollTimeout)
	defer cancel()

	if _, err := light.PollState(ctx); err != nil {
		return err
	}

	printState(light)
	return nil
}

func printState(light *hueble.Light) {
	label := color.New(color.FgCyan).SprintFunc()
	on := color.New(color.FgGreen).SprintFunc()
	off := color.New(color.FgRed).SprintFunc()

	fmt.Printf("%s %s\n", label("Address:"), light.Address())
	fmt.Printf("%s %s\n", label("Name:"), light.NameInApp())
	if light.SupportsPower() {
		state := off("off")
		if light.PowerState() {
			state = on("on")
		}
		fmt.Printf("%s %s\n", label("Power:"), state)
	}
	if light.SupportsBrightness() {
		fmt.Printf("%s %d/255\n", label("Brightness:"), light.Brightness())
	}
	if light.SupportsColourTemp() {
		fmt.Printf("%s %d mireds (%d-%d)\n", label("Colour temp:"),
			light.ColourTemp(), light.MinimumMireds(), light.MaximumMireds())
	}
	if light.SupportsColourXY() {
		xy := light.ColourXY()
		fmt.Printf("%s (%.4f, %.4f)\n", label("Colour XY:"), xy.X, xy.Y)
	}
}
