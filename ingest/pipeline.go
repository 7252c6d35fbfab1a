// Package ingest stores sensor readings posted by field devices: card
// resolution, fan-out over the card's plants, photo persistence and the
// monthly report append.
package ingest

import (
	"context"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/logging"
	"github.com/ZamarianPatrick/plantwatch-backend/metrics"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"github.com/ZamarianPatrick/plantwatch-backend/store"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const monthLayout = "2006-01"

func logger() *zerolog.Logger {
	l := logging.Module("ingest")
	return &l
}

// Reading is one decoded sensor post.
type Reading struct {
	Temperature    float64
	Light          float64
	GroundHumidity []float64
	Image          []byte
}

// Humidity is the first ground humidity sample, or nil when the device sent
// none. Further samples are not stored.
func (r Reading) Humidity() *float64 {
	if len(r.GroundHumidity) == 0 {
		return nil
	}
	h := r.GroundHumidity[0]
	return &h
}

type Result struct {
	PlantsUpdated int
	Month         string
	Key           string
}

type Pipeline struct {
	db      *gorm.DB
	photos  *PhotoStore
	keys    KeyGenerator
	feed    *Feed
	metrics *metrics.Metrics
	limiter *cardLimiter
	loc     *time.Location
	now     func() time.Time
}

type Option func(*Pipeline)

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLocation sets the timezone month keys are computed in.
func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) { p.loc = loc }
}

func WithFeed(feed *Feed) Option {
	return func(p *Pipeline) { p.feed = feed }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithRateLimit accepts at most perSecond readings per card with the given
// burst. Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(p *Pipeline) { p.limiter = newCardLimiter(perSecond, burst) }
}

func NewPipeline(db *gorm.DB, photos *PhotoStore, opts ...Option) *Pipeline {
	p := &Pipeline{
		db:     db,
		photos: photos,
		feed:   NewFeed(),
		loc:    time.Local,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Feed() *Feed {
	return p.feed
}

// Ingest stores one reading for every plant on the card identified by token.
//
// All plant rows and report rows are written in one transaction: either every
// plant of the card is updated or none is. Photos written before a failure
// are removed again.
func (p *Pipeline) Ingest(ctx context.Context, token string, r Reading) (Result, error) {
	if token == "" {
		p.metrics.Ingest(metrics.OutcomeInvalid)
		return Result{}, errors.Validation("missing card id")
	}

	plantIDs, err := store.CardPlantIDs(ctx, p.db, token)
	if err != nil {
		p.countFailure(err)
		return Result{}, err
	}
	if !p.limiter.allow(token) {
		p.metrics.Ingest(metrics.OutcomeRateLimited)
		return Result{}, errors.RateLimited("too many readings for card %s", token)
	}

	now := p.now().In(p.loc)
	res := Result{
		PlantsUpdated: len(plantIDs),
		Month:         now.Format(monthLayout),
		Key:           p.keys.Next(now),
	}
	if len(r.Image) > 0 {
		// photos from an earlier run may sit under keys this process hands out
		// again after the clock stepped back
		for p.photos.Exists(plantIDs, res.Key) {
			res.Key = p.keys.Next(now)
		}
	}
	humidity := r.Humidity()

	var written []string
	committed := false
	defer func() {
		if !committed {
			p.photos.Remove(written)
		}
	}()

	updates := make([]*model.PlantUpdate, 0, len(plantIDs))
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range plantIDs {
			ref := PhotoRef(id, res.Key)
			values := store.LiveValues{
				Temperature: r.Temperature,
				Luminosity:  r.Light,
				Humidity:    humidity,
				PhotoRef:    ref,
			}

			if err := store.UpdatePlant(tx, id, values); err != nil {
				return err
			}

			if len(r.Image) > 0 {
				path, err := p.photos.Save(id, res.Key, r.Image)
				if err != nil {
					return err
				}
				written = append(written, path)
			}

			if err := store.AppendReport(tx, res.Month, id, ref, values, now); err != nil {
				return err
			}

			updates = append(updates, &model.PlantUpdate{
				PlantID:     id,
				Card:        token,
				Temperature: r.Temperature,
				Luminosity:  r.Light,
				Humidity:    humidity,
				PhotoRef:    ref,
				Month:       res.Month,
				ReceivedAt:  now,
			})
		}
		return nil
	})
	if err != nil {
		if errors.CategoryOf(err) == "" {
			err = errors.Storage(err, "storing reading")
		}
		p.countFailure(err)
		logger().Error().Err(err).Str("card", token).Msg("reading rolled back")
		return Result{}, err
	}
	committed = true

	p.metrics.Ingest(metrics.OutcomeSuccess)
	p.metrics.Committed(len(plantIDs), len(r.Image)*len(written))
	for _, u := range updates {
		p.feed.Publish(u)
	}

	logger().Info().
		Str("card", token).
		Int("plants", res.PlantsUpdated).
		Str("month", res.Month).
		Bool("photo", len(r.Image) > 0).
		Msg("reading stored")
	return res, nil
}

func (p *Pipeline) countFailure(err error) {
	switch errors.CategoryOf(err) {
	case errors.CategoryNotFound:
		p.metrics.Ingest(metrics.OutcomeUnknownToken)
	case errors.CategoryValidation:
		p.metrics.Ingest(metrics.OutcomeInvalid)
	default:
		p.metrics.Ingest(metrics.OutcomeStorageError)
	}
}
