package model

import (
	"time"

	"gorm.io/datatypes"
)

type Class struct {
	Name   string `json:"name" gorm:"primaryKey;size:3"`
	Agenda string `json:"agenda" gorm:"size:255"`
}

type Member struct {
	ID               uint64         `json:"id" gorm:"primaryKey"`
	APIKey           string         `json:"-" gorm:"size:50;not null;uniqueIndex"`
	LastName         string         `json:"nom" gorm:"size:50;not null"`
	FirstName        string         `json:"prenom" gorm:"size:30;not null"`
	ClassName        string         `json:"classe" gorm:"size:3;not null;default:DE"`
	Class            Class          `json:"-" gorm:"foreignKey:ClassName;references:Name"`
	Role             string         `json:"role" gorm:"size:30;not null;default:Member"`
	ProfilePhoto     string         `json:"-" gorm:"size:50;not null;default:default"`
	RegisteredOn     datatypes.Date `json:"date_inscription" gorm:"not null"`
	PrincipalPlantID *uint64        `json:"-"`
}

type Plant struct {
	ID           uint64  `json:"id" gorm:"primaryKey"`
	Name         string  `json:"nom" gorm:"size:50;not null"`
	Species      string  `json:"type_plante" gorm:"size:50;not null"`
	Status       string  `json:"statut" gorm:"size:20;default:normal"`
	Location     string  `json:"localisation" gorm:"size:25;not null"`
	Humidity     float64 `json:"humidite"`
	Temperature  float64 `json:"temperature"`
	Luminosity   float64 `json:"luminosite"`
	LastPhotoRef string  `json:"derniere_photo" gorm:"size:64;default:None"`
	SupervisorID *uint64 `json:"superviseur"`
	Supervisor   *Member `json:"-" gorm:"foreignKey:SupervisorID"`
}

type Intervention struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	PerformedAt time.Time `json:"date_intervention" gorm:"index"`
	MemberID    uint64    `json:"id_intervenant" gorm:"index"`
	Member      Member    `json:"-"`
	PlantID     uint64    `json:"id_plante" gorm:"index"`
	Plant       Plant     `json:"-"`
	Note        string    `json:"note" gorm:"size:250"`
}

// Card is a badge provisioned for a field device. Its plants are kept in
// card order in CardPlant rows.
type Card struct {
	Identifier string      `json:"id" gorm:"primaryKey;size:50"`
	Plants     []CardPlant `json:"-" gorm:"foreignKey:CardIdentifier;references:Identifier;constraint:OnDelete:CASCADE"`
}

type CardPlant struct {
	CardIdentifier string `gorm:"primaryKey;size:50"`
	PlantID        uint64 `gorm:"primaryKey"`
	Plant          Plant  `gorm:"constraint:OnDelete:CASCADE"`
	Position       int    `gorm:"not null"`
}

// MonthlyReport is unique per (month, plant). Readings hold its history in
// insertion order.
type MonthlyReport struct {
	ID       uint64          `json:"id" gorm:"primaryKey"`
	Month    string          `json:"date_rapport" gorm:"size:7;not null;uniqueIndex:idx_report_month_plant"`
	PlantID  uint64          `json:"id_plante" gorm:"not null;uniqueIndex:idx_report_month_plant"`
	Plant    Plant           `json:"-"`
	PhotoRef string          `json:"photo" gorm:"size:64"`
	Readings []ReportReading `json:"-" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

type ReportReading struct {
	ID          uint64    `gorm:"primaryKey"`
	ReportID    uint64    `gorm:"not null;index"`
	Humidity    *float64  // nil when the device sent no ground humidity
	Temperature float64   `gorm:"not null"`
	Luminosity  float64   `gorm:"not null"`
	RecordedAt  time.Time `gorm:"not null"`
}

// All lists every table in migration order.
func All() []any {
	return []any{
		&Class{},
		&Member{},
		&Plant{},
		&Intervention{},
		&Card{},
		&CardPlant{},
		&MonthlyReport{},
		&ReportReading{},
	}
}
