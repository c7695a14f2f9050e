package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medparse/internal/domain"
	"medparse/internal/service"
)

// ParseHandler handles medicine parsing endpoints.
type ParseHandler struct {
	parseService service.ParseService
	logger       *zap.Logger
}

// NewParseHandler creates a new ParseHandler.
func NewParseHandler(parseService service.ParseService, logger *zap.Logger) *ParseHandler {
	return &ParseHandler{parseService: parseService, logger: logger}
}

// BatchInput is the DTO for batch parse requests.
type BatchInput struct {
	Medicines []domain.Medicine `json:"medicines" binding:"required"`
}

// ParsedMedicine is the wire shape of one item outcome.
type ParsedMedicine struct {
	VPID         string            `json:"VPID"`
	OriginalName string            `json:"original_name"`
	Status       string            `json:"status"`
	Name         string            `json:"name,omitempty"`
	Strength     string            `json:"strength,omitempty"`
	Formulation  string            `json:"formulation,omitempty"`
	Duration     string            `json:"duration,omitempty"`
	Error        *domain.ItemError `json:"error,omitempty"`
}

// BatchOutput is the DTO for batch parse responses. Medicines is index-aligned
// with the submitted list.
type BatchOutput struct {
	Medicines []ParsedMedicine `json:"medicines"`
}

// ParseSingle handles GET /api/v1/parse/:vpid?name=
func (h *ParseHandler) ParseSingle(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name query parameter is required")
		return
	}

	outcome := h.parseService.ParseOne(c.Request.Context(), domain.Medicine{
		Name: name,
		VPID: c.Param("vpid"),
	})

	if !outcome.OK() {
		status := http.StatusBadGateway
		if outcome.Error.Kind == domain.ErrorKindTimeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, APIResponse{Success: false, Data: toWire(outcome), Error: &APIError{
			Code:    string(outcome.Error.Kind),
			Message: outcome.Error.Message,
		}})
		return
	}

	RespondOK(c, toWire(outcome))
}

// ParseBatch handles POST /api/v1/parse/batch
func (h *ParseHandler) ParseBatch(c *gin.Context) {
	var input BatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.parseService.ParseBatch(c.Request.Context(), input.Medicines)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}

	out := BatchOutput{Medicines: make([]ParsedMedicine, len(result))}
	for i := range result {
		out.Medicines[i] = toWire(result[i])
	}

	switch result.Status() {
	case domain.BatchAllSucceeded:
		c.JSON(http.StatusOK, APIResponse{Success: true, Data: out})
	case domain.BatchPartial:
		c.JSON(http.StatusMultiStatus, APIResponse{Success: true, Data: out})
	default:
		c.JSON(http.StatusBadGateway, APIResponse{
			Success: false,
			Data:    out,
			Error:   &APIError{Code: "ALL_ITEMS_FAILED", Message: "no medicine in the batch could be parsed"},
		})
	}
}

func toWire(o domain.ParseOutcome) ParsedMedicine {
	m := ParsedMedicine{
		VPID:         o.VPID,
		OriginalName: o.OriginalName,
	}
	if o.OK() {
		m.Status = "success"
		m.Name = o.Fields.Name
		m.Strength = o.Fields.Strength
		m.Formulation = o.Fields.Formulation
		m.Duration = o.Fields.Duration
	} else {
		m.Status = "failed"
		m.Error = o.Error
	}
	return m
}
