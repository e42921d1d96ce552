package packages

import (
	"errors"
	"strings"

	pkgsvc "mortgage-dashboard/internal/application/packages"
	"mortgage-dashboard/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *pkgsvc.Service
}

// queryFrom reads the list state from the query string. A filter_key issued for other
// filters sends the request back to page 1.
func queryFrom(c *fiber.Ctx) pkgsvc.Query {
	q := pkgsvc.DefaultQuery()
	q.PageSize = 0
	q.Search = c.Query("search")
	q.Bank = c.Query("bank", pkgsvc.FilterAll)
	q.PropertyType = c.Query("property_type", pkgsvc.FilterAll)
	q.LockinPeriod = c.Query("lockin_period", pkgsvc.FilterAll)
	q.Category = c.Query("category", pkgsvc.FilterAll)
	q.ClientLoan = c.Query("client_loan")
	if v := c.Query("sort_by"); v != "" {
		q.SortBy = pkgsvc.SortField(v)
	}
	if v := c.Query("sort_order"); v != "" {
		q.SortOrder = pkgsvc.SortOrder(strings.ToLower(v))
	}
	q.Page = c.QueryInt("page", 1)
	return q.ResetPageIfChanged(c.Query("filter_key"))
}

// GET /api/v1/packages
func (h *Handlers) List(c *fiber.Ctx) error {
	res, err := h.Service.List(c.UserContext(), queryFrom(c))
	if err != nil {
		return response.Error(c, pkgsvc.ErrFetchFailed.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Mortgage packages fetched successfully", res.Cards, fiber.Map{
		"total":       res.Total,
		"total_all":   res.TotalAll,
		"page":        res.Page,
		"page_size":   res.PageSize,
		"total_pages": res.TotalPages,
		"client_loan": res.ClientLoan,
		"filter_key":  res.FilterKey,
		"facets":      res.Facets,
	})
}

// GET /api/v1/packages/options
func (h *Handlers) Options(c *fiber.Ctx) error {
	return response.Success(c, "Form options fetched successfully", pkgsvc.Options(), nil)
}

func packageID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// GET /api/v1/packages/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := packageID(c)
	if err != nil {
		return response.Error(c, "Invalid package id", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return storeError(c, err, pkgsvc.ErrFetchFailed)
	}
	return response.Success(c, "Mortgage package fetched successfully", fiber.Map{
		"package": p,
		"form":    pkgsvc.InputFrom(*p),
	}, nil)
}

// POST /api/v1/packages
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in pkgsvc.Input
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.Create(c.UserContext(), in)
	if err != nil {
		return storeError(c, err, pkgsvc.ErrCreateFailed)
	}
	return response.SuccessCreated(c, "Mortgage package created successfully", pkgsvc.CardFor(*p, false), nil)
}

// PUT /api/v1/packages/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := packageID(c)
	if err != nil {
		return response.Error(c, "Invalid package id", fiber.StatusBadRequest, nil)
	}
	var in pkgsvc.Input
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.Update(c.UserContext(), id, in)
	if err != nil {
		return storeError(c, err, pkgsvc.ErrUpdateFailed)
	}
	return response.Success(c, "Mortgage package updated successfully", pkgsvc.CardFor(*p, false), nil)
}

// DELETE /api/v1/packages/:id?confirm=true
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := packageID(c)
	if err != nil {
		return response.Error(c, "Invalid package id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.UserContext(), id, c.QueryBool("confirm", false)); err != nil {
		if errors.Is(err, pkgsvc.ErrNotConfirmed) {
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		}
		return storeError(c, err, pkgsvc.ErrDeleteFailed)
	}
	return response.Success(c, "Mortgage package deleted successfully", fiber.Map{"id": id}, nil)
}

// storeError maps service errors to responses. Unknown failures answer with the generic
// message of fallback, never the raw error.
func storeError(c *fiber.Ctx, err error, fallback error) error {
	var verr *pkgsvc.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.ValidationFailed(c, verr.Fields)
	case errors.Is(err, pkgsvc.ErrNotFound):
		return response.Error(c, pkgsvc.ErrNotFound.Error(), fiber.StatusNotFound, nil)
	default:
		return response.Error(c, fallback.Error(), fiber.StatusInternalServerError, nil)
	}
}
