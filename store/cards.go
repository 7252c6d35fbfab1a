package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"gorm.io/gorm"
)

// ParsePlantIDs parses the legacy comma-delimited card plant list ("1,2").
// Every entry must be a positive integer and appear once. An empty list is
// valid.
func ParsePlantIDs(list string) ([]uint64, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	parts := strings.Split(list, ",")
	ids := make([]uint64, 0, len(parts))
	seen := make(map[uint64]bool, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("plant list %q: entry %d (%q) is not a plant id", list, i+1, p)
		}
		if seen[id] {
			return nil, fmt.Errorf("plant list %q: plant %d listed twice", list, id)
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// ImportCard provisions a card from its legacy delimited plant list. Unknown
// plant ids reject the whole card.
func ImportCard(ctx context.Context, db *gorm.DB, identifier, plantList string) error {
	ids, err := ParsePlantIDs(plantList)
	if err != nil {
		return errors.Validation("card %s: %v", identifier, err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			var found int64
			if err := tx.Model(&model.Plant{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
				return err
			}
			if found != int64(len(ids)) {
				return errors.Validation("card %s references unknown plants (%s)", identifier, plantList)
			}
		}

		if err := tx.Create(&model.Card{Identifier: identifier}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		rows := make([]model.CardPlant, len(ids))
		for pos, id := range ids {
			rows[pos] = model.CardPlant{CardIdentifier: identifier, PlantID: id, Position: pos}
		}
		return tx.Omit("Plant").Create(&rows).Error
	})
}

// CardPlantIDs resolves a card token to its plants in card order.
func CardPlantIDs(ctx context.Context, db *gorm.DB, identifier string) ([]uint64, error) {
	var card model.Card
	err := db.WithContext(ctx).Where("identifier = ?", identifier).Take(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("unknown token")
	}
	if err != nil {
		return nil, errors.Storage(err, "resolving card")
	}

	var ids []uint64
	err = db.WithContext(ctx).Model(&model.CardPlant{}).
		Where("card_identifier = ?", identifier).
		Order("position").
		Pluck("plant_id", &ids).Error
	if err != nil {
		return nil, errors.Storage(err, "loading card plants")
	}
	return ids, nil
}
