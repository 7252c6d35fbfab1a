package sensors

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

var errMissingSensor = errors.New("temperature and light sensors are required")

type sensorData struct {
	ID             string    `json:"id"`
	Temperature    float64   `json:"temperature"`
	Light          float64   `json:"light"`
	GroundHumidity []float64 `json:"ground_humidity,omitempty"`
	Image          string    `json:"image,omitempty"`
}

// Client posts samples on behalf of one card.
type Client struct {
	url  string
	card string
	http *http.Client
}

func NewClient(baseURL, card string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		url:  strings.TrimRight(baseURL, "/") + "/sensor-data",
		card: card,
		http: hc,
	}
}

// Post sends one sample and returns how many plants the backend updated.
func (c *Client) Post(ctx context.Context, s Sample) (int, error) {
	body := sensorData{
		ID:             c.card,
		Temperature:    s.Temperature,
		Light:          s.Light,
		GroundHumidity: s.GroundHumidity,
	}
	if len(s.Image) > 0 {
		body.Image = base64.StdEncoding.EncodeToString(s.Image)
	}

	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting sample: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Status        string `json:"status"`
		PlantsUpdated int    `json:"plants_updated"`
		Error         string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("backend answered %d: %s", resp.StatusCode, out.Error)
	}
	return out.PlantsUpdated, nil
}

type Stats struct {
	Sent   int
	Failed int
}

// Run drives w and posts every sample through c until ctx is done or count
// posts were attempted. A count of zero or less runs until ctx is done. Failed
// posts are logged and counted, the device keeps going.
func Run(ctx context.Context, w *Worker, c *Client, count int) (Stats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stats Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(ctx)
	})
	g.Go(func() error {
		for s := range w.DataChannel() {
			if ctx.Err() != nil {
				continue
			}
			n, err := c.Post(ctx, s)
			if err != nil {
				stats.Failed++
				logger().Warn().Err(err).Str("card", c.card).Msg("sample rejected")
			} else {
				stats.Sent++
				logger().Info().Str("card", c.card).Int("plants", n).Float64("temperature", s.Temperature).Msg("sample posted")
			}
			if count > 0 && stats.Sent+stats.Failed >= count {
				cancel()
			}
		}
		return nil
	})

	err := g.Wait()
	return stats, err
}
