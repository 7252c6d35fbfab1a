package query

import (
	"context"
	"testing"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"github.com/ZamarianPatrick/plantwatch-backend/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newService(t *testing.T) *Service {
	t.Helper()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewService(storetest.OpenSeeded(t)).WithClock(func() time.Time { return now })
}

func TestPlantList(t *testing.T) {
	s := newService(t)

	plants, err := s.PlantList(context.Background())
	require.NoError(t, err)
	require.Len(t, plants, 13)
	assert.Equal(t, model.PlantSummary{ID: 1, Name: "Fern"}, plants[0])
	assert.Equal(t, model.PlantSummary{ID: 13, Name: "Palm"}, plants[12])
}

func TestPlantInfo(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	info, err := s.PlantInfo(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, model.PlantInfo{
		ID:           2,
		Name:         "Cactus",
		Species:      "Succulent",
		Location:     "Greenhouse A",
		Humidity:     15,
		Temperature:  27.3,
		Luminosity:   500,
		LastPhotoRef: "cactus.jpg",
	}, info)

	_, err = s.PlantInfo(ctx, "404")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = s.PlantInfo(ctx, "two")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestPlantNeeds(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	needs, err := s.PlantNeeds(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Dry", needs.Status)
	require.NotNil(t, needs.SupervisorID)
	assert.EqualValues(t, 2, *needs.SupervisorID)
	require.NotNil(t, needs.LastIntervention)
	assert.Equal(t, "2024-12-02", *needs.LastIntervention)

	needs, err = s.PlantNeeds(ctx, "9")
	require.NoError(t, err)
	assert.Nil(t, needs.LastIntervention)
}

func TestInterventions(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	list, err := s.PlantInterventions(ctx, "1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, list[0].ID)
	assert.Equal(t, "2024-12-01", list[0].PerformedAt)

	empty, err := s.PlantInterventions(ctx, "12")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	info, err := s.InterventionInfo(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, model.InterventionInfo{
		MemberName:     "Smith",
		MemberID:       2,
		MemberRole:     "President",
		PlantID:        2,
		PlantName:      "Cactus",
		Note:           "Removed dry stems",
		InterventionID: 2,
	}, info)

	_, err = s.InterventionInfo(ctx, "99")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLatestIntervention(t *testing.T) {
	db := storetest.OpenSeeded(t)
	s := NewService(db)
	ctx := context.Background()

	require.NoError(t, db.Omit("Member", "Plant").Create(&model.Intervention{
		PerformedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
		MemberID:    4,
		PlantID:     1,
		Note:        "Misted leaves",
	}).Error)

	info, err := s.LatestIntervention(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Misted leaves", info.Note)
	assert.Equal(t, "Brown", info.MemberName)
	assert.Equal(t, "Fern", info.PlantName)

	_, err = s.LatestIntervention(ctx, "11")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestReports(t *testing.T) {
	db := storetest.OpenSeeded(t)
	s := NewService(db)
	ctx := context.Background()

	require.NoError(t, db.Omit("Plant", "Readings").Create(&model.MonthlyReport{Month: "2024-05", PlantID: 1, PhotoRef: "1/x.png"}).Error)

	list, err := s.Reports(ctx, "1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-05", list[0].Month)
	assert.Equal(t, "2024-01", list[1].Month)

	report, err := s.Report(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, model.ReportInfo{
		Month:              "2024-01",
		HumidityHistory:    "45,46,47",
		TemperatureHistory: "22,23,22",
		LuminosityHistory:  "300,310,320",
		Photo:              "fern_hist.jpg",
	}, report)

	latest, err := s.LatestReport(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05", latest.Month)
	assert.Empty(t, latest.HumidityHistory)

	_, err = s.Report(ctx, "77")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = s.LatestReport(ctx, "13")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestReportInfoRendersMissingHumidityAsZero(t *testing.T) {
	h := 40.5
	info := reportInfo(model.MonthlyReport{
		Month: "2025-05",
		Readings: []model.ReportReading{
			{Humidity: &h, Temperature: 21, Luminosity: 300},
			{Temperature: 21.25, Luminosity: 310},
		},
	})

	assert.Equal(t, "40.5,0", info.HumidityHistory)
	assert.Equal(t, "21,21.25", info.TemperatureHistory)
	assert.Equal(t, "300,310", info.LuminosityHistory)
}

func TestMembers(t *testing.T) {
	s := newService(t)

	members, err := s.Members(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 11)

	// class 1A first, by last name
	assert.Equal(t, "1A", members[0].Class)
	assert.Equal(t, "Clark", members[0].LastName)
	assert.Equal(t, "DE", members[10].Class)
}

func TestMemberInfo(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	info, err := s.MemberInfo(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Smith", info.LastName)
	assert.Equal(t, "2024-01-01", info.RegisteredOn)
	assert.Equal(t, 2.0, info.SeniorityYears)
	require.NotNil(t, info.PrincipalPlant)
	assert.Equal(t, "Fern", *info.PrincipalPlant)
	assert.EqualValues(t, 1, info.InterventionCount)

	info, err = s.MemberInfo(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, info.PrincipalPlant)

	_, err = s.MemberInfo(ctx, "100")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSeniority(t *testing.T) {
	reg := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, seniority(reg, reg))
	assert.Equal(t, 0.5, seniority(reg, reg.Add(182*24*time.Hour)))
}

func TestHierarchyUsesRoleRankNotInsertionOrder(t *testing.T) {
	db := storetest.OpenSeeded(t)
	s := NewService(db)

	// a second president inserted last still ranks before the vice president
	require.NoError(t, db.Omit("Class").Create(&model.Member{
		ID: 50, APIKey: "K50", LastName: "Adams", FirstName: "Zoe", ClassName: "2A",
		Role: "President", RegisteredOn: datatypes.Date(time.Now()),
	}).Error)

	officers, err := s.Hierarchy(context.Background())
	require.NoError(t, err)

	roles := make([]string, len(officers))
	for i, o := range officers {
		roles[i] = o.Role
	}
	assert.Equal(t, []string{"President", "President", "Vice President", "Secretary", "Treasurer", "Communications Lead"}, roles)
	assert.Equal(t, "Adams", officers[0].LastName)
	assert.Equal(t, "Smith", officers[1].LastName)
}

func TestClassAgenda(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	agenda, err := s.ClassAgenda(ctx, "1B")
	require.NoError(t, err)
	assert.Equal(t, "Agenda 1B", agenda.Agenda)

	_, err = s.ClassAgenda(ctx, "9Z")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = s.ClassAgenda(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}
