package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	payscaledomain "github.com/smallbiznis/payrollrecon/internal/payscale/domain"
)

type saveOverridesRequest struct {
	Overrides []payscaledomain.OverrideInput `json:"overrides"`
}

func (s *Server) CreatePersonalPayscale(c *gin.Context) {
	var req payscaledomain.PersonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.payscaleSvc.CreatePersonal(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": view})
}

func (s *Server) UpdatePersonalPayscale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req payscaledomain.PersonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.payscaleSvc.UpdatePersonal(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) ListPersonalPayscales(c *gin.Context) {
	views, err := s.payscaleSvc.ListPersonal(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (s *Server) DeletePersonalPayscale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.payscaleSvc.DeletePersonal(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CreateManagerPayscale(c *gin.Context) {
	var req payscaledomain.ManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.payscaleSvc.CreateManager(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": view})
}

func (s *Server) UpdateManagerPayscale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req payscaledomain.ManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.payscaleSvc.UpdateManager(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) ListManagerPayscales(c *gin.Context) {
	views, err := s.payscaleSvc.ListManager(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

func (s *Server) DeleteManagerPayscale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.payscaleSvc.DeleteManager(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListOverrides(c *gin.Context) {
	managerID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	overrides, err := s.payscaleSvc.ListOverrides(c.Request.Context(), managerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": overrides})
}

// SaveOverrides replaces the manager's per-agent, per-plan overrides.
func (s *Server) SaveOverrides(c *gin.Context) {
	managerID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req saveOverridesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	overrides, err := s.payscaleSvc.SaveOverrides(c.Request.Context(), managerID, req.Overrides)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": overrides})
}
