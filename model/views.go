package model

import "time"

// Response shapes served to the front end. Field names are part of the public
// contract with existing clients.

type PlantSummary struct {
	ID   uint64 `json:"id"`
	Name string `json:"nom"`
}

type PlantInfo struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"nom"`
	Species      string  `json:"type_plante"`
	Location     string  `json:"localisation"`
	Humidity     float64 `json:"humidite"`
	Temperature  float64 `json:"temperature"`
	Luminosity   float64 `json:"luminosite"`
	LastPhotoRef string  `json:"derniere_photo"`
}

type PlantNeeds struct {
	Status           string  `json:"statut"`
	SupervisorID     *uint64 `json:"superviseur"`
	LastIntervention *string `json:"derniere_intervention"`
}

type InterventionSummary struct {
	PerformedAt string `json:"date_intervention"`
	ID          uint64 `json:"id"`
}

type InterventionInfo struct {
	MemberName     string `json:"nom_intervenant"`
	MemberID       uint64 `json:"id_intervenant"`
	MemberRole     string `json:"role_intervenant"`
	PlantID        uint64 `json:"id_plante"`
	PlantName      string `json:"nom_plante"`
	Note           string `json:"note"`
	InterventionID uint64 `json:"id_intervention"`
}

type ReportSummary struct {
	ID    uint64 `json:"id"`
	Month string `json:"date_rapport"`
}

// ReportInfo carries the three history series as comma-joined strings, the
// representation existing clients parse.
type ReportInfo struct {
	Month              string `json:"date_rapport"`
	HumidityHistory    string `json:"historique_humidite"`
	TemperatureHistory string `json:"historique_temperature"`
	LuminosityHistory  string `json:"historique_luminosite"`
	Photo              string `json:"photo"`
}

type MemberSummary struct {
	ID        uint64 `json:"id"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Class     string `json:"classe"`
	Role      string `json:"role"`
}

type MemberInfo struct {
	LastName          string  `json:"nom"`
	FirstName         string  `json:"prenom"`
	Class             string  `json:"classe"`
	Role              string  `json:"role"`
	RegisteredOn      string  `json:"date_inscription"`
	SeniorityYears    float64 `json:"anciennete_annees"`
	PrincipalPlant    *string `json:"plante_principale"`
	InterventionCount int64   `json:"nombre_interventions"`
}

type Officer struct {
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Role      string `json:"role"`
}

type ClassAgenda struct {
	Agenda string `json:"agenda"`
}

// PlantUpdate is pushed to live subscribers after an ingest commits.
type PlantUpdate struct {
	PlantID     uint64    `json:"id_plante"`
	Card        string    `json:"carte"`
	Temperature float64   `json:"temperature"`
	Luminosity  float64   `json:"luminosite"`
	Humidity    *float64  `json:"humidite,omitempty"`
	PhotoRef    string    `json:"derniere_photo"`
	Month       string    `json:"date_rapport"`
	ReceivedAt  time.Time `json:"recu_le"`
}
