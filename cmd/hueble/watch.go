package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	hueble "github.com/flip-dots/hueble-go"
	"github.com/flip-dots/hueble-go/goble"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <address>",
	Short: "Watch a light's state live via notifications",
	Long: fmt.Sprintf(`Connects to a light, subscribes to its notifications and prints every
state change until interrupted. Changes made by other controllers (the Hue
app, a Zigbee switch) show up too.

Examples:
  hueble watch %s
  hueble watch %s --interval 30s`, exampleAddress, exampleAddress),
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchInterval time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 60*time.Second, "Background poll interval (0 disables polling)")
	watchCmd.Flags().BoolP("verbose", "", false, "Enable debug logging")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes := make(chan struct{}, 1)
	if err := light.OnStateChanged("watch", func(*hueble.Light) {
		select {
		case changes <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}

	if _, err := light.PollState(ctx); err != nil {
		return err
	}
	printState(light)
	fmt.Println(color.New(color.Faint).Sprint("watching... press Ctrl+C to stop"))

	var ticker *time.Ticker
	var tick <-chan time.Time
	if watchInterval > 0 {
		ticker = time.NewTicker(watchInterval)
		tick = ticker.C
		defer ticker.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if _, err := light.PollState(ctx); err != nil {
				logger.WithField("error", err).Warn("Background poll failed")
			}
		case <-changes:
			for _, ev := range light.Events() {
				fmt.Printf("%s %s %s\n",
					color.New(color.Faint).Sprint(ev.Time.Format(time.TimeOnly)),
					color.New(color.FgYellow).Sprint(ev.Reason),
					ev.Attribute)
			}
			printState(light)
		}
	}
}
