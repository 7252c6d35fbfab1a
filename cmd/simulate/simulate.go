package simulate

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/logging"
	"github.com/ZamarianPatrick/plantwatch-backend/sensors"
	"github.com/spf13/cobra"
)

type options struct {
	url         string
	card        string
	interval    time.Duration
	count       int
	image       string
	noImage     bool
	temperature float64
	light       float64
	humidity    []float64
	jitter      float64
	logLevel    string
}

// Command posts fake readings for one card, the way a field device would.
func Command() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Post simulated sensor readings to a running backend",
		// the simulator talks to a remote backend and needs no local config
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.Config{Level: o.logLevel, Format: "console"})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := sensors.NewWorker(o.interval).
				Add(sensors.NewFake(sensors.Temperature, o.temperature, o.jitter)).
				Add(sensors.NewFake(sensors.Light, o.light, o.jitter*20))
			for _, h := range o.humidity {
				w.Add(sensors.NewFake(sensors.GroundHumidity, h, o.jitter*2))
			}

			switch {
			case o.noImage:
			case o.image != "":
				img, err := os.ReadFile(o.image)
				if err != nil {
					return fmt.Errorf("reading image: %w", err)
				}
				w.AddCamera(&sensors.FakeCamera{Image: img})
			default:
				w.AddCamera(&sensors.FakeCamera{})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats, err := sensors.Run(ctx, w, sensors.NewClient(o.url, o.card, nil), o.count)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d readings sent, %d rejected\n", stats.Sent, stats.Failed)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.url, "url", "http://localhost:5000", "Backend base URL")
	f.StringVar(&o.card, "card", "Card001", "Card identifier sent as id")
	f.DurationVar(&o.interval, "interval", 10*time.Second, "Time between readings")
	f.IntVar(&o.count, "count", 0, "Stop after this many readings (0 runs until interrupted)")
	f.StringVar(&o.image, "image", "", "PNG file sent as the photo (default a generated image)")
	f.BoolVar(&o.noImage, "no-image", false, "Send readings without a photo")
	f.Float64Var(&o.temperature, "temperature", 22, "Base temperature")
	f.Float64Var(&o.light, "light", 400, "Base luminosity")
	f.Float64SliceVar(&o.humidity, "humidity", []float64{45}, "Base ground humidity per sensor")
	f.Float64Var(&o.jitter, "jitter", 0.5, "Noise added to the temperature, scaled for the other channels")
	f.StringVar(&o.logLevel, "log-level", "info", "Log level")
	return cmd
}
