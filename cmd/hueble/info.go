package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/flip-dots/hueble-go/goble"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <address>",
	Short: "Read a light's identity metadata",
	Long: fmt.Sprintf(`Reads manufacturer, model, firmware revision and Zigbee address.

Examples:
  hueble info %s`, exampleAddress),
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

var infoTimeout time.Duration

func init() {
	infoCmd.Flags().DurationVar(&infoTimeout, "timeout", 60*time.Second, "Overall operation timeout")
	infoCmd.Flags().BoolP("verbose", "", false, "Enable debug logging")
}

func runInfo(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(cmd.Context(), infoTimeout)
	defer cancel()

	for _, poll := range []func(context.Context) (bool, error){
		light.PollManufacturer,
		light.PollModel,
		light.PollFirmware,
		light.PollZigbeeAddress,
		light.PollName,
	} {
		if _, err := poll(ctx); err != nil {
			return err
		}
	}

	label := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("%s %s\n", label("Address:"), light.Address())
	fmt.Printf("%s %s\n", label("Name:"), light.NameInApp())
	fmt.Printf("%s %s\n", label("Manufacturer:"), light.Manufacturer())
	fmt.Printf("%s %s\n", label("Model:"), light.Model())
	fmt.Printf("%s %s\n", label("Firmware:"), light.Firmware())
	fmt.Printf("%s %s\n", label("Zigbee address:"), light.ZigbeeAddress())
	return nil
}
