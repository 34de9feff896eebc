package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/shopping-items/internal/service"
	"github.com/shopspring/decimal"
)

const shoppingItemsPath = "/api/shopping-items"

type ShoppingItemHandler struct {
	svc service.ShoppingItemService
}

func NewShoppingItemHandler(svc service.ShoppingItemService) *ShoppingItemHandler {
	return &ShoppingItemHandler{svc: svc}
}

// ShoppingItemRequest is shared by create and update. Pointer fields let the
// handler tell a missing field apart from a zero value.
type ShoppingItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	Category    *string          `json:"category"`
}

func (r *ShoppingItemRequest) missingFields() []string {
	var missing []string
	if r.Name == nil {
		missing = append(missing, "name")
	}
	if r.Price == nil {
		missing = append(missing, "price")
	}
	if r.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if r.Category == nil {
		missing = append(missing, "category")
	}
	return missing
}

func (h *ShoppingItemHandler) List(c echo.Context) error {
	items, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "failed to fetch items")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ShoppingItemHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid item id"))
	}
	item, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "failed to fetch item")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ShoppingItemHandler) Create(c echo.Context) error {
	req, errResp := bindItemRequest(c)
	if errResp != nil {
		return c.JSON(http.StatusBadRequest, errResp)
	}
	item, err := h.svc.Create(c.Request().Context(), service.CreateShoppingItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		Category:    req.Category,
	})
	if err != nil {
		return h.fail(c, err, "failed to create item")
	}
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("%s/%d", shoppingItemsPath, item.ID))
	return c.JSON(http.StatusCreated, item)
}

func (h *ShoppingItemHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid item id"))
	}
	req, errResp := bindItemRequest(c)
	if errResp != nil {
		return c.JSON(http.StatusBadRequest, errResp)
	}
	item, err := h.svc.Update(c.Request().Context(), id, service.UpdateShoppingItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		Category:    req.Category,
	})
	if err != nil {
		return h.fail(c, err, "failed to update item")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ShoppingItemHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid item id"))
	}
	deleted, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "failed to delete item")
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", fmt.Sprintf("shopping item %d not found", id)))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ShoppingItemHandler) ListByCategory(c echo.Context) error {
	category := c.Param("category")
	// The router matches on RawPath when the path carries escapes that
	// Path cannot represent (e.g. %2F); only then is the param still encoded.
	if c.Request().URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(category); err == nil {
			category = unescaped
		}
	}
	items, err := h.svc.ListByCategory(c.Request().Context(), category)
	if err != nil {
		return h.fail(c, err, "failed to fetch items")
	}
	return c.JSON(http.StatusOK, items)
}

// fail maps service errors to responses. Anything that is not a validation
// or lookup miss is logged and hidden behind a generic message.
func (h *ShoppingItemHandler) fail(c echo.Context, err error, msg string) error {
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.Logger().Warnf("rid=%s %s %s: %v", rid, c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusBadRequest, NewErrorResponse("invalid_input", err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "shopping item not found"))
	default:
		c.Logger().Errorf("rid=%s %s %s: %v", rid, c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", msg))
	}
}

func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint64(id), true
}

func bindItemRequest(c echo.Context) (*ShoppingItemRequest, *ErrorResponse) {
	var req ShoppingItemRequest
	if err := c.Bind(&req); err != nil {
		resp := NewErrorResponse("bad_request", "invalid json")
		return nil, &resp
	}
	if missing := req.missingFields(); len(missing) > 0 {
		resp := NewErrorResponse("bad_request", "missing required fields: "+strings.Join(missing, ", "), missing...)
		return nil, &resp
	}
	return &req, nil
}
