package api

import (
	"errors"
	"net/http"
	"strconv"

	"sales_browser/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// listQuery mirrors the query string of GET /sales.
type listQuery struct {
	Page    int    `form:"page" binding:"min=0"`
	Size    int    `form:"size" binding:"min=0"`
	Sort    string `form:"sort"`
	MinDate string `form:"minDate"`
	MaxDate string `form:"maxDate"`
	Name    string `form:"name"`
}

// handleListSales handles the GET /sales endpoint.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	page, err := h.salesService.FindSales(sales.Query{
		Page: q.Page,
		Size: q.Size,
		Sort: q.Sort,
		Filters: sales.Filters{
			MinDate: q.MinDate,
			MaxDate: q.MaxDate,
			Name:    q.Name,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrInvalidFilter), errors.Is(err, sales.ErrInvalidSort):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("error searching sales", zap.Any("query", q), zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search sales"})
		}
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req sales.Sale
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sale, err := h.salesService.CreateSale(req)
	if err != nil {
		if errors.Is(err, sales.ErrInvalidSale) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed to create sale", zap.Error(err), zap.String("seller_name", req.SellerName))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create sale"})
		return
	}

	ctx.JSON(http.StatusCreated, sale)
}

// handleUpdateSale handles the PUT /sales/:id endpoint.
func (h *salesHandler) handleUpdateSale(ctx *gin.Context) {
	id, ok := saleID(ctx)
	if !ok {
		return
	}

	var req sales.Sale
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	updated, err := h.salesService.UpdateSale(id, req)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
		case errors.Is(err, sales.ErrInvalidSale):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// handleDeleteSale handles the DELETE /sales/:id endpoint.
func (h *salesHandler) handleDeleteSale(ctx *gin.Context) {
	id, ok := saleID(ctx)
	if !ok {
		return
	}

	if err := h.salesService.DeleteSale(id); err != nil {
		if errors.Is(err, sales.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
			return
		}
		h.logger.Error("failed to delete sale", zap.Int64("sale_id", id), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// handleNotify handles the GET /sales/:id/notification endpoint.
func (h *salesHandler) handleNotify(ctx *gin.Context) {
	id, ok := saleID(ctx)
	if !ok {
		return
	}

	if err := h.salesService.SendNotification(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, sales.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
			return
		}
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "failed to send notification"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func saleID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale id"})
		return 0, false
	}
	return id, true
}
