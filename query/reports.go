package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"gorm.io/gorm"
)

func (s *Service) Reports(ctx context.Context, rawPlantID string) ([]model.ReportSummary, error) {
	plantID, err := parseID("id_plante", rawPlantID)
	if err != nil {
		return nil, err
	}

	out := []model.ReportSummary{}
	err = s.db.WithContext(ctx).Model(&model.MonthlyReport{}).
		Select("id", "month").
		Where("plant_id = ?", plantID).
		Order("month DESC").
		Scan(&out).Error
	if err != nil {
		return nil, errors.Storage(err, "listing reports")
	}
	return out, nil
}

func (s *Service) Report(ctx context.Context, rawID string) (model.ReportInfo, error) {
	id, err := parseID("id_rapport", rawID)
	if err != nil {
		return model.ReportInfo{}, err
	}

	var r model.MonthlyReport
	if err := s.withReadings(ctx).Take(&r, id).Error; err != nil {
		return model.ReportInfo{}, notFound(err, "report")
	}
	return reportInfo(r), nil
}

func (s *Service) LatestReport(ctx context.Context, rawPlantID string) (model.ReportInfo, error) {
	plantID, err := parseID("id_plante", rawPlantID)
	if err != nil {
		return model.ReportInfo{}, err
	}

	var r model.MonthlyReport
	err = s.withReadings(ctx).
		Where("plant_id = ?", plantID).
		Order("month DESC").
		Take(&r).Error
	if err != nil {
		return model.ReportInfo{}, notFound(err, "report for this plant")
	}
	return reportInfo(r), nil
}

func (s *Service) withReadings(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Readings", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

// reportInfo renders the reading sequence as the comma-joined history strings
// clients expect. A reading without humidity renders as 0.
func reportInfo(r model.MonthlyReport) model.ReportInfo {
	hum := make([]string, len(r.Readings))
	temp := make([]string, len(r.Readings))
	lum := make([]string, len(r.Readings))
	for i, rd := range r.Readings {
		h := 0.0
		if rd.Humidity != nil {
			h = *rd.Humidity
		}
		hum[i] = formatValue(h)
		temp[i] = formatValue(rd.Temperature)
		lum[i] = formatValue(rd.Luminosity)
	}

	return model.ReportInfo{
		Month:              r.Month,
		HumidityHistory:    strings.Join(hum, ","),
		TemperatureHistory: strings.Join(temp, ","),
		LuminosityHistory:  strings.Join(lum, ","),
		Photo:              r.PhotoRef,
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
