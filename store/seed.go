package store

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

var demoClasses = []model.Class{
	{Name: "DE", Agenda: "Agenda DEFAULT"},
	{Name: "1A", Agenda: "Agenda 1A"},
	{Name: "1B", Agenda: "Agenda 1B"},
	{Name: "2A", Agenda: "Agenda 2A"},
}

var demoMembers = []model.Member{
	{ID: 1, APIKey: "DEFAULT_API_KEY", LastName: "Everyone", FirstName: "Everyone", ClassName: "DE", Role: "Everyone", ProfilePhoto: "everyone", RegisteredOn: datatypes.Date(day("2024-01-01"))},
	{ID: 2, APIKey: "APIKEY1", LastName: "Smith", FirstName: "John", ClassName: "1A", Role: "President", ProfilePhoto: "smith.jpg", RegisteredOn: datatypes.Date(day("2024-01-01")), PrincipalPlantID: ptr[uint64](1)},
	{ID: 3, APIKey: "APIKEY2", LastName: "Doe", FirstName: "Jane", ClassName: "1B", Role: "Treasurer", ProfilePhoto: "doe.jpg", RegisteredOn: datatypes.Date(day("2024-01-02")), PrincipalPlantID: ptr[uint64](2)},
	{ID: 4, APIKey: "APIKEY3", LastName: "Brown", FirstName: "Charlie", ClassName: "2A", Role: "Secretary", ProfilePhoto: "brown.jpg", RegisteredOn: datatypes.Date(day("2024-01-03")), PrincipalPlantID: ptr[uint64](3)},
	{ID: 5, APIKey: "APIKEY4", LastName: "Johnson", FirstName: "Emily", ClassName: "1A", Role: "Vice President", ProfilePhoto: "emily.jpg", RegisteredOn: datatypes.Date(day("2024-01-04")), PrincipalPlantID: ptr[uint64](4)},
	{ID: 6, APIKey: "APIKEY5", LastName: "Williams", FirstName: "Ethan", ClassName: "1B", Role: "Communications Lead", ProfilePhoto: "ethan.jpg", RegisteredOn: datatypes.Date(day("2024-01-05")), PrincipalPlantID: ptr[uint64](5)},
	{ID: 7, APIKey: "APIKEY6", LastName: "Garcia", FirstName: "Sophia", ClassName: "2A", Role: "Volunteer", ProfilePhoto: "sophia.jpg", RegisteredOn: datatypes.Date(day("2024-01-06")), PrincipalPlantID: ptr[uint64](6)},
	{ID: 8, APIKey: "APIKEY7", LastName: "Martinez", FirstName: "Oliver", ClassName: "1A", Role: "Volunteer", ProfilePhoto: "oliver.jpg", RegisteredOn: datatypes.Date(day("2024-01-07")), PrincipalPlantID: ptr[uint64](7)},
	{ID: 9, APIKey: "APIKEY8", LastName: "Davis", FirstName: "Amelia", ClassName: "1B", Role: "Volunteer", ProfilePhoto: "amelia.jpg", RegisteredOn: datatypes.Date(day("2024-01-08")), PrincipalPlantID: ptr[uint64](8)},
	{ID: 10, APIKey: "APIKEY9", LastName: "Rodriguez", FirstName: "Mia", ClassName: "2A", Role: "Volunteer", ProfilePhoto: "mia.jpg", RegisteredOn: datatypes.Date(day("2024-01-09")), PrincipalPlantID: ptr[uint64](9)},
	{ID: 11, APIKey: "APIKEY10", LastName: "Clark", FirstName: "Lucas", ClassName: "1A", Role: "Volunteer", ProfilePhoto: "lucas.jpg", RegisteredOn: datatypes.Date(day("2024-01-10")), PrincipalPlantID: ptr[uint64](10)},
}

var demoPlants = []model.Plant{
	{ID: 1, Name: "Fern", Species: "Indoor", Status: "normal", Location: "Greenhouse A", Humidity: 45.2, Temperature: 22.5, Luminosity: 300, LastPhotoRef: "fern.jpg", SupervisorID: ptr[uint64](1)},
	{ID: 2, Name: "Cactus", Species: "Succulent", Status: "Dry", Location: "Greenhouse A", Humidity: 15, Temperature: 27.3, Luminosity: 500, LastPhotoRef: "cactus.jpg", SupervisorID: ptr[uint64](2)},
	{ID: 3, Name: "Basil", Species: "Herb", Status: "Watered", Location: "Garden", Humidity: 60, Temperature: 25, Luminosity: 200, LastPhotoRef: "basil.jpg", SupervisorID: ptr[uint64](3)},
	{ID: 4, Name: "Aloe Vera", Species: "Succulent", Status: "normal", Location: "Greenhouse A", Humidity: 50, Temperature: 24, Luminosity: 250, LastPhotoRef: "aloe_vera.jpg", SupervisorID: ptr[uint64](4)},
	{ID: 5, Name: "Lavender", Species: "Herb", Status: "normal", Location: "Garden", Humidity: 20, Temperature: 23.5, Luminosity: 400, LastPhotoRef: "lavender.jpg", SupervisorID: ptr[uint64](5)},
	{ID: 6, Name: "Snake Plant", Species: "Indoor", Status: "normal", Location: "Hall", Humidity: 35, Temperature: 22, Luminosity: 300, LastPhotoRef: "snake_plant.jpg", SupervisorID: ptr[uint64](6)},
	{ID: 7, Name: "Money Plant", Species: "Indoor", Status: "normal", Location: "Hall", Humidity: 60, Temperature: 24.5, Luminosity: 320, LastPhotoRef: "money_plant.jpg", SupervisorID: ptr[uint64](7)},
	{ID: 8, Name: "Peace Lily", Species: "Flower", Status: "normal", Location: "Library", Humidity: 70, Temperature: 21.5, Luminosity: 200, LastPhotoRef: "peace_lily.jpg", SupervisorID: ptr[uint64](8)},
	{ID: 9, Name: "Spider Plant", Species: "Indoor", Status: "normal", Location: "Library", Humidity: 80, Temperature: 22, Luminosity: 180, LastPhotoRef: "spider_plant.jpg", SupervisorID: ptr[uint64](9)},
	{ID: 10, Name: "Rose", Species: "Flower", Status: "normal", Location: "Garden", Humidity: 30, Temperature: 26, Luminosity: 600, LastPhotoRef: "rose.jpg", SupervisorID: ptr[uint64](10)},
	{ID: 11, Name: "Bamboo", Species: "Indoor", Status: "normal", Location: "Hall", Humidity: 65, Temperature: 23, Luminosity: 150, LastPhotoRef: "bamboo.jpg", SupervisorID: ptr[uint64](1)},
	{ID: 12, Name: "Orchid", Species: "Flower", Status: "normal", Location: "Library", Humidity: 55, Temperature: 25, Luminosity: 400, LastPhotoRef: "orchid.jpg", SupervisorID: ptr[uint64](2)},
	{ID: 13, Name: "Palm", Species: "Outdoor", Status: "normal", Location: "Courtyard", Humidity: 40, Temperature: 28, Luminosity: 500, LastPhotoRef: "palm.jpg", SupervisorID: ptr[uint64](3)},
}

var demoInterventions = []model.Intervention{
	{PerformedAt: day("2024-12-01"), MemberID: 1, PlantID: 1, Note: "Repotted and watered"},
	{PerformedAt: day("2024-12-02"), MemberID: 2, PlantID: 2, Note: "Removed dry stems"},
	{PerformedAt: day("2024-12-03"), MemberID: 3, PlantID: 3, Note: "Pinched flowering tips"},
}

// demoReports uses the legacy comma-joined history format.
var demoReports = []struct {
	month, humidity, temperature, luminosity, photo string
	plantID                                         uint64
}{
	{"2024-01", "45,46,47", "22,23,22", "300,310,320", "fern_hist.jpg", 1},
	{"2024-02", "15,16,14", "27,28,27", "500,520,510", "cactus_hist.jpg", 2},
	{"2024-03", "60,62,59", "25,26,25", "200,210,220", "basil_hist.jpg", 3},
}

var demoCards = []struct{ identifier, plants string }{
	{"Card001", "1,2"},
	{"Card002", "3"},
	{"Card003", "2,3"},
}

// SeedDemo fills an empty database with the association's demo fixture. It
// returns false without writing anything when plants already exist.
func SeedDemo(ctx context.Context, db *gorm.DB) (bool, error) {
	var plants int64
	if err := db.WithContext(ctx).Model(&model.Plant{}).Count(&plants).Error; err != nil {
		return false, err
	}
	if plants > 0 {
		return false, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		classes := slices.Clone(demoClasses)
		if err := tx.Create(&classes).Error; err != nil {
			return fmt.Errorf("seeding classes: %w", err)
		}
		members := slices.Clone(demoMembers)
		if err := tx.Omit("Class").Create(&members).Error; err != nil {
			return fmt.Errorf("seeding members: %w", err)
		}
		plants := slices.Clone(demoPlants)
		if err := tx.Omit("Supervisor").Create(&plants).Error; err != nil {
			return fmt.Errorf("seeding plants: %w", err)
		}
		interventions := slices.Clone(demoInterventions)
		if err := tx.Omit("Member", "Plant").Create(&interventions).Error; err != nil {
			return fmt.Errorf("seeding interventions: %w", err)
		}
		for _, r := range demoReports {
			if err := importReport(tx, r.month, r.plantID, r.photo, r.humidity, r.temperature, r.luminosity); err != nil {
				return err
			}
		}
		for _, c := range demoCards {
			if err := ImportCard(ctx, tx, c.identifier, c.plants); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// importReport loads a report kept in the legacy comma-joined format. The three
// series must have the same length.
func importReport(tx *gorm.DB, month string, plantID uint64, photo, humidity, temperature, luminosity string) error {
	hum, err := parseSeries(humidity)
	if err != nil {
		return err
	}
	temp, err := parseSeries(temperature)
	if err != nil {
		return err
	}
	lum, err := parseSeries(luminosity)
	if err != nil {
		return err
	}
	if len(hum) != len(temp) || len(temp) != len(lum) {
		return fmt.Errorf("report %s/%d: series lengths differ", month, plantID)
	}

	report := model.MonthlyReport{Month: month, PlantID: plantID, PhotoRef: photo}
	if err := tx.Omit("Plant", "Readings").Create(&report).Error; err != nil {
		return fmt.Errorf("seeding report %s: %w", month, err)
	}

	start, err := time.Parse("2006-01", month)
	if err != nil {
		return err
	}
	for i := range hum {
		reading := model.ReportReading{
			ReportID:    report.ID,
			Humidity:    ptr(hum[i]),
			Temperature: temp[i],
			Luminosity:  lum[i],
			RecordedAt:  start.Add(time.Duration(i) * time.Hour),
		}
		if err := tx.Create(&reading).Error; err != nil {
			return fmt.Errorf("seeding report %s: %w", month, err)
		}
	}
	return nil
}

func parseSeries(s string) ([]float64, error) {
	var out []float64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}
