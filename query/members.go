package query

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
)

const daysPerYear = 365.25

func (s *Service) Members(ctx context.Context) ([]model.MemberSummary, error) {
	out := []model.MemberSummary{}
	err := s.db.WithContext(ctx).Model(&model.Member{}).
		Select("id", "last_name", "first_name", "class_name AS class", "role").
		Order("class_name, last_name").
		Scan(&out).Error
	if err != nil {
		return nil, errors.Storage(err, "listing members")
	}
	return out, nil
}

func (s *Service) MemberInfo(ctx context.Context, rawID string) (model.MemberInfo, error) {
	id, err := parseID("id_membre", rawID)
	if err != nil {
		return model.MemberInfo{}, err
	}

	db := s.db.WithContext(ctx)

	var m model.Member
	if err := db.Take(&m, id).Error; err != nil {
		return model.MemberInfo{}, notFound(err, "member")
	}

	registered := time.Time(m.RegisteredOn)
	info := model.MemberInfo{
		LastName:       m.LastName,
		FirstName:      m.FirstName,
		Class:          m.ClassName,
		Role:           m.Role,
		RegisteredOn:   registered.Format(time.DateOnly),
		SeniorityYears: seniority(registered, s.now()),
	}

	if m.PrincipalPlantID != nil {
		var names []string
		err := db.Model(&model.Plant{}).Where("id = ?", *m.PrincipalPlantID).Pluck("name", &names).Error
		if err != nil {
			return model.MemberInfo{}, errors.Storage(err, "loading principal plant")
		}
		if len(names) == 1 {
			info.PrincipalPlant = &names[0]
		}
	}

	if err := db.Model(&model.Intervention{}).Where("member_id = ?", id).Count(&info.InterventionCount).Error; err != nil {
		return model.MemberInfo{}, errors.Storage(err, "counting interventions")
	}
	return info, nil
}

// seniority is the membership length in years, rounded to two decimals.
func seniority(registered, now time.Time) float64 {
	years := now.Sub(registered).Hours() / 24 / daysPerYear
	return math.Round(years*100) / 100
}

// Hierarchy lists officers by rank, then by name.
func (s *Service) Hierarchy(ctx context.Context) ([]model.Officer, error) {
	var members []model.Member
	err := s.db.WithContext(ctx).
		Where("role IN ?", OfficerRoles).
		Order("last_name, first_name").
		Find(&members).Error
	if err != nil {
		return nil, errors.Storage(err, "listing officers")
	}

	slices.SortStableFunc(members, func(a, b model.Member) int {
		return slices.Index(OfficerRoles, a.Role) - slices.Index(OfficerRoles, b.Role)
	})

	out := make([]model.Officer, len(members))
	for i, m := range members {
		out[i] = model.Officer{LastName: m.LastName, FirstName: m.FirstName, Role: m.Role}
	}
	return out, nil
}

func (s *Service) ClassAgenda(ctx context.Context, class string) (model.ClassAgenda, error) {
	if class == "" {
		return model.ClassAgenda{}, errors.Validation("classe is required")
	}

	var c model.Class
	if err := s.db.WithContext(ctx).Where("name = ?", class).Take(&c).Error; err != nil {
		return model.ClassAgenda{}, notFound(err, "class")
	}
	return model.ClassAgenda{Agenda: c.Agenda}, nil
}
