package api

import (
	"github.com/ZamarianPatrick/plantwatch-backend/errors"
	"github.com/ZamarianPatrick/plantwatch-backend/model"
	"github.com/gin-gonic/gin"
)

// bindQuery fills q from the query string. A missing required parameter is a
// validation error.
func bindQuery(c *gin.Context, q any, name string) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		fail(c, errors.Validation("missing query parameter %s", name))
		return false
	}
	return true
}

func (s *Server) getPlantList(c *gin.Context) {
	plants, err := s.queries.PlantList(c.Request.Context())
	respond(c, plants, err)
}

func (s *Server) getPlantInfos(c *gin.Context) {
	var q model.PlantIDQuery
	if !bindQuery(c, &q, "id") {
		return
	}
	info, err := s.queries.PlantInfo(c.Request.Context(), q.ID)
	respond(c, info, err)
}

func (s *Server) getPlantNeeds(c *gin.Context) {
	var q model.PlantIDQuery
	if !bindQuery(c, &q, "id") {
		return
	}
	needs, err := s.queries.PlantNeeds(c.Request.Context(), q.ID)
	respond(c, needs, err)
}

func (s *Server) getPlantInterventions(c *gin.Context) {
	var q model.PlantRefQuery
	if !bindQuery(c, &q, "id_plante") {
		return
	}
	list, err := s.queries.PlantInterventions(c.Request.Context(), q.PlantID)
	respond(c, list, err)
}

func (s *Server) getInterventionInfos(c *gin.Context) {
	var q model.InterventionQuery
	if !bindQuery(c, &q, "id_intervention") {
		return
	}
	info, err := s.queries.InterventionInfo(c.Request.Context(), q.InterventionID)
	respond(c, info, err)
}

func (s *Server) getLatestIntervention(c *gin.Context) {
	var q model.PlantRefQuery
	if !bindQuery(c, &q, "id_plante") {
		return
	}
	info, err := s.queries.LatestIntervention(c.Request.Context(), q.PlantID)
	respond(c, info, err)
}

func (s *Server) getAllReports(c *gin.Context) {
	var q model.PlantRefQuery
	if !bindQuery(c, &q, "id_plante") {
		return
	}
	list, err := s.queries.Reports(c.Request.Context(), q.PlantID)
	respond(c, list, err)
}

func (s *Server) getReport(c *gin.Context) {
	var q model.ReportQuery
	if !bindQuery(c, &q, "id_rapport") {
		return
	}
	report, err := s.queries.Report(c.Request.Context(), q.ReportID)
	respond(c, report, err)
}

func (s *Server) getLatestReport(c *gin.Context) {
	var q model.PlantRefQuery
	if !bindQuery(c, &q, "id_plante") {
		return
	}
	report, err := s.queries.LatestReport(c.Request.Context(), q.PlantID)
	respond(c, report, err)
}

func (s *Server) getMembers(c *gin.Context) {
	members, err := s.queries.Members(c.Request.Context())
	respond(c, members, err)
}

func (s *Server) getMemberInfos(c *gin.Context) {
	var q model.MemberQuery
	if !bindQuery(c, &q, "id_membre") {
		return
	}
	info, err := s.queries.MemberInfo(c.Request.Context(), q.MemberID)
	respond(c, info, err)
}

func (s *Server) getHierarchy(c *gin.Context) {
	officers, err := s.queries.Hierarchy(c.Request.Context())
	respond(c, officers, err)
}

func (s *Server) getClassAgenda(c *gin.Context) {
	var q model.ClassQuery
	if !bindQuery(c, &q, "classe") {
		return
	}
	agenda, err := s.queries.ClassAgenda(c.Request.Context(), q.Class)
	respond(c, agenda, err)
}
