// Package query implements the read endpoints over plants, members,
// interventions and monthly reports.
package query

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"gorm.io/gorm"
)

// OfficerRoles lists association officer roles by rank.
var OfficerRoles = []string{
	"President",
	"Vice President",
	"Secretary",
	"Treasurer",
	"Communications Lead",
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// WithClock returns a copy of s that computes seniority against now.
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now
	return &c
}

func parseID(name, raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errors.Validation("%s must be a positive integer", name)
	}
	return id, nil
}

// notFound turns gorm's missing-row error into a categorized one.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound("%s not found", what)
	}
	return errors.Storage(err, "loading %s", what)
}

func (s *Service) PlantList(ctx context.Context) ([]model.PlantSummary, error) {
	out := []model.PlantSummary{}
	err := s.db.WithContext(ctx).Model(&model.Plant{}).
		Select("id", "name").
		Order("id").
		Scan(&out).Error
	if err != nil {
		return nil, errors.Storage(err, "listing plants")
	}
	return out, nil
}

func (s *Service) PlantInfo(ctx context.Context, rawID string) (model.PlantInfo, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return model.PlantInfo{}, err
	}

	var p model.Plant
	if err := s.db.WithContext(ctx).Take(&p, id).Error; err != nil {
		return model.PlantInfo{}, notFound(err, "plant")
	}
	return model.PlantInfo{
		ID:           p.ID,
		Name:         p.Name,
		Species:      p.Species,
		Location:     p.Location,
		Humidity:     p.Humidity,
		Temperature:  p.Temperature,
		Luminosity:   p.Luminosity,
		LastPhotoRef: p.LastPhotoRef,
	}, nil
}

func (s *Service) PlantNeeds(ctx context.Context, rawID string) (model.PlantNeeds, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return model.PlantNeeds{}, err
	}

	var p model.Plant
	if err := s.db.WithContext(ctx).Take(&p, id).Error; err != nil {
		return model.PlantNeeds{}, notFound(err, "plant")
	}

	needs := model.PlantNeeds{Status: p.Status, SupervisorID: p.SupervisorID}

	var last []model.Intervention
	err = s.db.WithContext(ctx).
		Where("plant_id = ?", id).
		Order("performed_at DESC").
		Limit(1).
		Find(&last).Error
	if err != nil {
		return model.PlantNeeds{}, errors.Storage(err, "loading interventions")
	}
	if len(last) == 1 {
		day := last[0].PerformedAt.Format(time.DateOnly)
		needs.LastIntervention = &day
	}
	return needs, nil
}
