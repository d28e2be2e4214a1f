package handler

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/meninojhony/modec-challenger/middleware"
	"github.com/meninojhony/modec-challenger/model"
	"github.com/meninojhony/modec-challenger/pkg/logger"
	"github.com/meninojhony/modec-challenger/service"
	"github.com/meninojhony/modec-challenger/urlsync"
)

type ContractHandler struct {
	contracts *service.ContractService
}

func NewContractHandler(contracts *service.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

// parseFilters reads the recognized filter keys from the query string.
// Unknown keys are ignored; malformed numerics are dropped.
func parseFilters(c *gin.Context) model.Filters {
	return urlsync.DecodeFilters(c.Request.URL.Query())
}

func parsePagination(c *gin.Context) model.Pagination {
	p := model.DefaultPagination()
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			p.PageSize = size
		}
	}
	if sortBy := c.Query("sort_by"); sortBy != "" {
		p.SortBy = sortBy
	}
	if dir := c.Query("sort_dir"); dir == model.SortAsc || dir == model.SortDesc {
		p.SortDir = dir
	}
	return p
}

// List returns one page of the filtered contract listing
func (h *ContractHandler) List(c *gin.Context) {
	page, err := h.contracts.List(c.Request.Context(), parseFilters(c), parsePagination(c))
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list contracts", "error", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get returns a single contract with its category
func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.contracts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// Create stores a new contract
func (h *ContractHandler) Create(c *gin.Context) {
	var input model.ContractCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "ValidationError", "Invalid request body: "+err.Error())
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), input, middleware.GetUsername(c))
	if err != nil {
		fail(c, err)
		return
	}

	logger.Info(c.Request.Context(), "contract created",
		"contract_id", contract.ID,
		"contract_number", contract.ContractNumber,
	)
	c.JSON(http.StatusCreated, contract)
}

// Update applies a sparse update to a contract
func (h *ContractHandler) Update(c *gin.Context) {
	var input model.ContractUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		apiError(c, http.StatusBadRequest, "ValidationError", "Invalid request body: "+err.Error())
		return
	}

	contract, err := h.contracts.Update(c.Request.Context(), c.Param("id"), input, middleware.GetUsername(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

// Delete removes a contract
func (h *ContractHandler) Delete(c *gin.Context) {
	if err := h.contracts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	logger.Info(c.Request.Context(), "contract deleted", "contract_id", c.Param("id"))
	c.Status(http.StatusNoContent)
}

// History returns a contract's change records, newest first
func (h *ContractHandler) History(c *gin.Context) {
	history, err := h.contracts.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// Export returns the filtered listing as an XLSX workbook. The workbook
// is rendered into memory first so a failure can still produce a proper
// error response instead of a truncated attachment.
func (h *ContractHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.contracts.Export(c.Request.Context(), parseFilters(c), &buf); err != nil {
		logger.Error(c.Request.Context(), "failed to export contracts", "error", err)
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="contracts.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// DashboardHandler serves the portfolio summary
type DashboardHandler struct {
	contracts *service.ContractService
}

func NewDashboardHandler(contracts *service.ContractService) *DashboardHandler {
	return &DashboardHandler{contracts: contracts}
}

// Stats returns total, active, expiring-soon and total-value figures
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.contracts.Stats(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "failed to compute stats", "error", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
