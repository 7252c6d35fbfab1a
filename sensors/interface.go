// Package sensors simulates a field device: it samples a set of sensors on an
// interval and posts each sample to the backend's /sensor-data endpoint.
package sensors

import (
	"context"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/logging"
	"github.com/rs/zerolog"
)

// Sensor names a Worker dispatches on.
const (
	Temperature    = "temperature"
	Light          = "light"
	GroundHumidity = "ground_humidity"
)

func logger() *zerolog.Logger {
	l := logging.Module("simulate")
	return &l
}

type Sensor interface {
	Name() string
	ReadValue() (float64, error)
}

type Camera interface {
	Capture() ([]byte, error)
}

// Sample is one reading of every sensor attached to a Worker.
type Sample struct {
	Temperature    float64
	Light          float64
	GroundHumidity []float64
	Image          []byte
	TakenAt        time.Time
}

type Worker struct {
	interval    time.Duration
	temperature Sensor
	light       Sensor
	humidity    []Sensor
	camera      Camera
	data        chan Sample
}

func NewWorker(interval time.Duration) *Worker {
	return &Worker{
		interval: interval,
		data:     make(chan Sample),
	}
}

// Add attaches a sensor by name. Humidity sensors accumulate, a second
// temperature or light sensor replaces the first.
func (w *Worker) Add(sensor Sensor) *Worker {
	switch sensor.Name() {
	case Temperature:
		w.temperature = sensor
	case Light:
		w.light = sensor
	case GroundHumidity:
		w.humidity = append(w.humidity, sensor)
	default:
		logger().Warn().Str("sensor", sensor.Name()).Msg("unknown sensor ignored")
	}
	return w
}

func (w *Worker) AddCamera(camera Camera) *Worker {
	w.camera = camera
	return w
}

func (w *Worker) DataChannel() <-chan Sample {
	return w.data
}

// Run samples every interval until ctx is done, then closes the data channel.
// A sample whose temperature or light cannot be read is skipped.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.data)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		sample, err := w.read()
		if err != nil {
			logger().Warn().Err(err).Msg("sample skipped")
		} else {
			select {
			case w.data <- sample:
			case <-ctx.Done():
				return nil
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Worker) read() (Sample, error) {
	if w.temperature == nil || w.light == nil {
		return Sample{}, errMissingSensor
	}

	s := Sample{TakenAt: time.Now()}
	var err error
	if s.Temperature, err = w.temperature.ReadValue(); err != nil {
		return Sample{}, err
	}
	if s.Light, err = w.light.ReadValue(); err != nil {
		return Sample{}, err
	}

	// a failed sensor just leaves its value out
	for _, h := range w.humidity {
		v, err := h.ReadValue()
		if err != nil {
			logger().Debug().Err(err).Msg("humidity sensor unreadable")
			continue
		}
		s.GroundHumidity = append(s.GroundHumidity, v)
	}

	if w.camera != nil {
		img, err := w.camera.Capture()
		if err != nil {
			logger().Debug().Err(err).Msg("camera unreadable")
		} else {
			s.Image = img
		}
	}
	return s, nil
}
