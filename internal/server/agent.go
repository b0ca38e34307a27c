package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	agentdomain "github.com/smallbiznis/payrollrecon/internal/agent/domain"
)

func (s *Server) CreateAgent(c *gin.Context) {
	var req agentdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	agent, err := s.agentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": agent})
}

func (s *Server) UpdateAgent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req agentdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	agent, err := s.agentSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": agent})
}

func (s *Server) GetAgent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	agent, err := s.agentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": agent})
}

func (s *Server) ListAgents(c *gin.Context) {
	agents, err := s.agentSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": agents})
}

func (s *Server) DeleteAgent(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.agentSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListAssignedAgents(c *gin.Context) {
	managerID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	agents, err := s.agentSvc.AssignedAgents(c.Request.Context(), managerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": agents})
}

// OnboardAgent provisions a login account and creates the agent behind it.
func (s *Server) OnboardAgent(c *gin.Context) {
	var req agentdomain.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.agentSvc.Onboard(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}
