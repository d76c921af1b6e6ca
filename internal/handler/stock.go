package handler

import (
	"net/http"
	"strconv"

	"stockbook/internal/apierror"
	"stockbook/internal/dto"
	"stockbook/internal/middleware"
	"stockbook/internal/model"
	"stockbook/internal/repository"
	"stockbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// ProcessMovement is the single entry point for manual stock changes:
// receipts, write-offs and stock-take adjustments.
func (h *StockHandler) ProcessMovement(c *gin.Context) {
	var req dto.ProcessMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.ProcessMovement(c.Request.Context(), req, actorID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StockHandler) ListMovements(c *gin.Context) {
	filter := repository.StockMovementFilter{Page: 1, Limit: 50}

	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid product_id"))
			return
		}
		filter.ProductID = &id
	}
	if raw := c.Query("kind"); raw != "" {
		kind := model.MovementKind(raw)
		if !kind.Valid() {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid kind"))
			return
		}
		filter.Kind = kind
	}
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			filter.Page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			filter.Limit = v
		}
	}

	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
