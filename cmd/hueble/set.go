package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flip-dots/hueble-go/attr"
	"github.com/flip-dots/hueble-go/goble"
)

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <address> <attribute> <value>",
	Short: "Set a light attribute",
	Long: fmt.Sprintf(`Sets one attribute of a Hue BLE light. Connects and pairs on demand.

Attributes:
  power       on|off
  brightness  0-255
  temp        colour temperature in mireds, %d-%d
  xy          CIE colour as x,y with each coordinate in 0.0-1.0
  name        new light name

Examples:
  hueble set %s power on
  hueble set %s brightness 128
  hueble set %s temp 370
  hueble set %s xy 0.675,0.322
  hueble set %s name "Reading lamp"

Setting an attribute while the light is off is allowed; the value takes
effect without switching the light on.`,
		attr.MinMireds, attr.MaxMireds,
		exampleAddress, exampleAddress, exampleAddress, exampleAddress, exampleAddress),
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

var setTimeout time.Duration

func init() {
	setCmd.Flags().DurationVar(&setTimeout, "timeout", 60*time.Second, "Overall operation timeout")
	setCmd.Flags().BoolP("verbose", "", false, "Enable debug logging")
}

func runSet(cmd *cobra.Command, args []string) error {
	logger, err := configureLogger(cmd, "verbose")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	address, attribute, value := args[0], args[1], args[2]

	light := goble.NewLight(address, cfg, logger)
	defer light.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), setTimeout)
	defer cancel()

	switch attribute {
	case "power":
		on, err := parseOnOff(value)
		if err != nil {
			return err
		}
		return light.SetPower(ctx, on)

	case "brightness":
		b, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return fmt.Errorf("invalid brightness %q: expected 0-255", value)
		}
		return light.SetBrightness(ctx, uint8(b))

	case "temp":
		mireds, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid colour temperature %q: expected %d-%d mireds",
				value, attr.MinMireds, attr.MaxMireds)
		}
		return light.SetColourTemp(ctx, uint16(mireds))

	case "xy":
		xy, err := parseXY(value)
		if err != nil {
			return err
		}
		return light.SetColourXY(ctx, xy)

	case "name":
		return light.SetLightName(ctx, value)

	default:
		return fmt.Errorf("unknown attribute %q: expected power, brightness, temp, xy or name", attribute)
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid power state %q: expected on or off", s)
	}
}

func parseXY(s string) (attr.XY, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return attr.XY{}, fmt.Errorf("invalid xy %q: expected x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return attr.XY{}, fmt.Errorf("invalid xy %q: coordinates must be numbers", s)
	}
	return attr.XY{X: x, Y: y}, nil
}
