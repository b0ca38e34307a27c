package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/payrollrecon/internal/commission"
	"github.com/smallbiznis/payrollrecon/internal/feed"
)

const (
	installsField   = "new_installs"
	whiteGloveField = "white_glove"
)

type saveBatchRequest struct {
	BatchName string                  `json:"batch_name"`
	Lines     []commission.ReportLine `json:"lines"`
}

type renameBatchRequest struct {
	BatchName string `json:"batch_name"`
}

// GenerateReport ingests the two uploaded feeds and returns the unsaved report.
func (s *Server) GenerateReport(c *gin.Context) {
	installs, err := s.readFeed(c, installsField)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	whiteGlove, err := s.readFeed(c, whiteGloveField)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.payrollSvc.Generate(c.Request.Context(), installs.Rows, whiteGlove.Rows)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// readFeed parses one uploaded file. Rows the reader could not decode abort
// the upload rather than being dropped.
func (s *Server) readFeed(c *gin.Context, field string) (*feed.Table, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, newValidationError(field, "required", field+" file is required")
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	table, err := feed.ParseFile(header.Filename, file, feed.ParseOptions{
		Delimiter: s.rules.Get().Feed.DelimiterRune(),
		Header:    true,
	})
	if err != nil {
		return nil, err
	}
	if len(table.Errors) > 0 {
		vErr := &ValidationErrors{}
		for _, lineErr := range table.Errors {
			vErr.Errors = append(vErr.Errors, ValidationError{
				Field:   field,
				Code:    "malformed_row",
				Message: fmt.Sprintf("line %d: %s", lineErr.Line, lineErr.Message),
			})
		}
		return nil, vErr
	}
	return table, nil
}

func (s *Server) SaveBatch(c *gin.Context) {
	var req saveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	batch, err := s.payrollSvc.SaveBatch(c.Request.Context(), req.BatchName, req.Lines)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": batch})
}

// ListBatches returns every batch with its dashboard figures, newest first.
func (s *Server) ListBatches(c *gin.Context) {
	summaries, err := s.overdueSvc.BatchSummaries(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func (s *Server) GetBatch(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("batch_id", id.String())

	view, err := s.paymentSvc.LoadBatch(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) RenameBatch(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("batch_id", id.String())

	var req renameBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	batch, err := s.payrollSvc.RenameBatch(c.Request.Context(), id, req.BatchName)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batch})
}

func (s *Server) DeleteBatch(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set("batch_id", id.String())

	if err := s.payrollSvc.DeleteBatch(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetOverdueCount(c *gin.Context) {
	count, err := s.overdueSvc.GlobalOverdueCount(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"overdue_accounts": count}})
}

func (s *Server) ToggleLinePaid(c *gin.Context) {
	lineID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	dim, err := queryDimension(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	state, err := s.paymentSvc.ToggleLinePaid(c.Request.Context(), lineID, dim)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}

func (s *Server) ToggleAccountPaid(c *gin.Context) {
	lineID, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	accountID, err := pathID(c, "account_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	dim, err := queryDimension(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	state, err := s.paymentSvc.ToggleAccountPaid(c.Request.Context(), lineID, accountID, dim)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}
