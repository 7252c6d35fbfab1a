package api

import (
	"encoding/base64"
	"net/http"

	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/ingest"
	"github.com/ZamarianPatrick/plantwatch-backend/metrics"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"github.com/gin-gonic/gin"
)

func (s *Server) postSensorData(c *gin.Context) {
	var in model.SensorDataInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.metrics.Ingest(metrics.OutcomeInvalid)
		_ = c.Error(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON data"})
		return
	}

	reading := ingest.Reading{
		Temperature:    *in.Temperature,
		Light:          *in.Light,
		GroundHumidity: in.GroundHumidity,
	}
	if in.Image != "" {
		img, err := base64.StdEncoding.DecodeString(in.Image)
		if err != nil {
			s.metrics.Ingest(metrics.OutcomeInvalid)
			fail(c, errors.Validation("image is not valid base64"))
			return
		}
		reading.Image = img
	}

	res, err := s.pipeline.Ingest(c.Request.Context(), in.ID, reading)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "plants_updated": res.PlantsUpdated})
}
