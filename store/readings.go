package store

import (
	"fmt"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LiveValues are the last-known values written onto a plant row.
type LiveValues struct {
	Temperature float64
	Luminosity  float64
	Humidity    *float64 // left untouched when nil
	PhotoRef    string
}

// UpdatePlant overwrites the live fields of one plant. A missing plant is an
// integrity failure: cards only reference existing plants.
func UpdatePlant(tx *gorm.DB, plantID uint64, v LiveValues) error {
	updates := map[string]any{
		"temperature":    v.Temperature,
		"luminosity":     v.Luminosity,
		"last_photo_ref": v.PhotoRef,
	}
	if v.Humidity != nil {
		updates["humidity"] = *v.Humidity
	}

	res := tx.Model(&model.Plant{}).Where("id = ?", plantID).Updates(updates)
	if res.Error != nil {
		return errors.Storage(res.Error, "updating plant %d", plantID)
	}
	if res.RowsAffected == 0 {
		return errors.Storage(fmt.Errorf("plant %d does not exist", plantID), "card references a missing plant")
	}
	return nil
}

// AppendReport upserts the (month, plant) report row, overwriting its photo,
// and appends one reading to its history.
func AppendReport(tx *gorm.DB, month string, plantID uint64, photoRef string, v LiveValues, at time.Time) error {
	report := model.MonthlyReport{Month: month, PlantID: plantID, PhotoRef: photoRef}
	err := tx.Omit("Plant", "Readings").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "month"}, {Name: "plant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"photo_ref"}),
	}).Create(&report).Error
	if err != nil {
		return errors.Storage(err, "upserting report %s for plant %d", month, plantID)
	}

	// the upsert does not report the id of an existing row on every driver
	var stored model.MonthlyReport
	err = tx.Select("id").Where("month = ? AND plant_id = ?", month, plantID).Take(&stored).Error
	if err != nil {
		return errors.Storage(err, "loading report %s for plant %d", month, plantID)
	}

	reading := model.ReportReading{
		ReportID:    stored.ID,
		Humidity:    v.Humidity,
		Temperature: v.Temperature,
		Luminosity:  v.Luminosity,
		RecordedAt:  at,
	}
	if err := tx.Create(&reading).Error; err != nil {
		return errors.Storage(err, "appending reading to report %d", stored.ID)
	}
	return nil
}
