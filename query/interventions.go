package query

import (
	"context"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"gorm.io/gorm"
)

const interventionInfoColumns = `members.last_name AS member_name,
	interventions.member_id AS member_id,
	members.role AS member_role,
	interventions.plant_id AS plant_id,
	plants.name AS plant_name,
	interventions.note AS note,
	interventions.id AS intervention_id`

func (s *Service) interventionInfo(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("interventions").
		Select(interventionInfoColumns).
		Joins("JOIN plants ON plants.id = interventions.plant_id").
		Joins("JOIN members ON members.id = interventions.member_id")
}

func (s *Service) PlantInterventions(ctx context.Context, rawPlantID string) ([]model.InterventionSummary, error) {
	plantID, err := parseID("id_plante", rawPlantID)
	if err != nil {
		return nil, err
	}

	var rows []model.Intervention
	err = s.db.WithContext(ctx).
		Select("id", "performed_at").
		Where("plant_id = ?", plantID).
		Order("performed_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Storage(err, "listing interventions")
	}

	out := make([]model.InterventionSummary, len(rows))
	for i, r := range rows {
		out[i] = model.InterventionSummary{PerformedAt: r.PerformedAt.Format(time.DateOnly), ID: r.ID}
	}
	return out, nil
}

func (s *Service) InterventionInfo(ctx context.Context, rawID string) (model.InterventionInfo, error) {
	id, err := parseID("id_intervention", rawID)
	if err != nil {
		return model.InterventionInfo{}, err
	}

	var info model.InterventionInfo
	if err := s.interventionInfo(ctx).Where("interventions.id = ?", id).Take(&info).Error; err != nil {
		return model.InterventionInfo{}, notFound(err, "intervention")
	}
	return info, nil
}

func (s *Service) LatestIntervention(ctx context.Context, rawPlantID string) (model.InterventionInfo, error) {
	plantID, err := parseID("id_plante", rawPlantID)
	if err != nil {
		return model.InterventionInfo{}, err
	}

	var info model.InterventionInfo
	err = s.interventionInfo(ctx).
		Where("interventions.plant_id = ?", plantID).
		Order("interventions.performed_at DESC, interventions.id DESC").
		Take(&info).Error
	if err != nil {
		return model.InterventionInfo{}, notFound(err, "intervention for this plant")
	}
	return info, nil
}
