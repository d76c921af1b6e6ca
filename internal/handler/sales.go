package handler

import (
	"net/http"
	"strconv"
	"time"

	"stockbook/internal/apierror"
	"stockbook/internal/dto"
	"stockbook/internal/middleware"
	"stockbook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// parseTimeParam accepts RFC 3339 or a bare date. A bare "to" date is pushed
// to the end of that day so date-only ranges are inclusive.
func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}

func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	sellerID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.CreateSale(c.Request.Context(), req, sellerID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SalesHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if filter.ClientIDRaw != "" {
		id, err := uuid.Parse(filter.ClientIDRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid client_id"))
			return
		}
		filter.ClientID = &id
	}
	if filter.FromRaw != "" {
		t, err := parseTimeParam(filter.FromRaw, false)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid from date"))
			return
		}
		filter.From = &t
	}
	if filter.ToRaw != "" {
		t, err := parseTimeParam(filter.ToRaw, true)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid to date"))
			return
		}
		filter.To = &t
	}

	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProductHistory lists the sale lines of one product, newest first.
func (h *SalesHandler) ProductHistory(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, limit := 1, 50
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	resp, err := h.svc.ProductHistory(c.Request.Context(), productID, page, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
