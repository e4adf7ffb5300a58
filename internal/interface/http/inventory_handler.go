package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"farm-platform/internal/application/inventory"

	"github.com/gin-gonic/gin"
)

type outflowRequest struct {
	CropID   int64   `json:"cropId"`
	Quantity float64 `json:"quantity"`
	Date     string  `json:"date"`
}

func (s *Server) handleOutflow(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || itemID <= 0 {
		abortError(c, http.StatusBadRequest, errCodeBadRequest, "Invalid item id", err)
		return
	}
	var req outflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, errCodeBadRequest, "Invalid request body", err)
		return
	}

	in := inventory.OutflowInput{ItemID: itemID, CropID: req.CropID, Quantity: req.Quantity}
	if req.Date != "" {
		d, err := parsePeriodBound(req.Date, s.loc, false)
		if err != nil {
			abortError(c, http.StatusBadRequest, errCodeBadRequest, "Invalid outflow date", err)
			return
		}
		in.Date = d
	}

	res, err := s.outflows.Execute(c.Request.Context(), in)
	switch {
	case err == nil:
	case errors.Is(err, inventory.ErrInvalidQuantity):
		abortError(c, http.StatusBadRequest, errCodeBadRequest, "Invalid quantity", err)
		return
	case errors.Is(err, inventory.ErrItemNotFound):
		abortError(c, http.StatusNotFound, errCodeItemNotFound, "Inventory item not found", err)
		return
	case errors.Is(err, inventory.ErrInsufficientStock):
		abortError(c, http.StatusConflict, errCodeInsufficient, "Insufficient stock", err)
		return
	default:
		s.log.Error("stock outflow failed", err, "item_id", itemID)
		abortError(c, http.StatusInternalServerError, errCodeInternal, "Error recording outflow", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    res,
	})
}
