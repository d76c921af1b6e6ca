package handler

import (
	"net/http"
	"strconv"

	"stockbook/internal/dto"
	"stockbook/internal/middleware"
	"stockbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RefundsHandler struct{ svc service.RefundService }

func NewRefundsHandler(svc service.RefundService) *RefundsHandler {
	return &RefundsHandler{svc: svc}
}

// Create refunds part or all of a sale: restores stock and rolls back any
// debt the sale put on the client.
func (h *RefundsHandler) Create(c *gin.Context) {
	saleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateRefundRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	actorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.CreateRefund(c.Request.Context(), saleID, req, actorID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RefundsHandler) List(c *gin.Context) {
	page, limit := 1, 50
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	resp, err := h.svc.ListRefunds(c.Request.Context(), page, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
