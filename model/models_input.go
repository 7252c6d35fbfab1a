package model

// SensorDataInput is the body a field device posts to /sensor-data.
type SensorDataInput struct {
	ID             string    `json:"id" binding:"required"`
	Temperature    *float64  `json:"temperature" binding:"required"`
	Light          *float64  `json:"light" binding:"required"`
	GroundHumidity []float64 `json:"ground_humidity"`
	Image          string    `json:"image"`
}

type PlantIDQuery struct {
	ID string `form:"id" binding:"required"`
}

type PlantRefQuery struct {
	PlantID string `form:"id_plante" binding:"required"`
}

type InterventionQuery struct {
	InterventionID string `form:"id_intervention" binding:"required"`
}

type ReportQuery struct {
	ReportID string `form:"id_rapport" binding:"required"`
}

type MemberQuery struct {
	MemberID string `form:"id_membre" binding:"required"`
}

type ClassQuery struct {
	Class string `form:"classe" binding:"required"`
}
