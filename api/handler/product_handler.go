package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"dacsanviet/internal/dto"
	"dacsanviet/internal/repository"
	"dacsanviet/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	Service *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{Service: svc}
}

func (h *ProductHandler) List(c echo.Context) error {
	filter, err := parseProductFilter(c)
	if err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	page, err := h.Service.List(c.Request().Context(), filter)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("products", dto.NewProductListResponse(page)))
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid product id"))
	}
	product, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("product", dto.NewProductResponse(product)))
}

func (h *ProductHandler) Categories(c echo.Context) error {
	categories, err := h.Service.Categories(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK("categories", dto.NewCategoryResponses(categories)))
}

func parseProductFilter(c echo.Context) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Query: strings.TrimSpace(c.QueryParam("q")),
		Sort:  c.QueryParam("sort"),
	}
	filter.Limit, filter.Offset = parseLimitOffset(c)

	if raw := c.QueryParam("minPrice"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("minPrice must be a number")
		}
		filter.MinPrice = &value
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, errors.New("maxPrice must be a number")
		}
		filter.MaxPrice = &value
	}
	if raw := c.QueryParam("categoryIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				return filter, errors.New("categoryIds must be a comma separated list of ids")
			}
			filter.CategoryIDs = append(filter.CategoryIDs, id)
		}
	}
	return filter, nil
}
