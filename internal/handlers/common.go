package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ekuzmina/foodgram-go/internal/services"
	"github.com/ekuzmina/foodgram-go/internal/types"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

// pageParams is the parsed limit/offset pagination state of a request.
type pageParams struct {
	Page   int
	Limit  int
	Offset int
}

// parsePage reads page/limit query params, falling back to the configured
// default page size.
func parsePage(c *fiber.Ctx, defaultLimit int) pageParams {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	return pageParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// makePage wraps results in the {count,next,previous,results} envelope with
// absolute page links.
func makePage(c *fiber.Ctx, p pageParams, total int64, results interface{}) services.Page {
	page := services.Page{Count: total, Results: results}

	if int64(p.Offset+p.Limit) < total {
		next := pageURL(c, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		previous := pageURL(c, p.Page-1)
		page.Previous = &previous
	}
	return page
}

func pageURL(c *fiber.Ctx, page int) string {
	args := []string{fmt.Sprintf("page=%d", page)}
	queryArgs := c.Context().QueryArgs()
	for key, value := range queryArgs.All() {
		if string(key) == "page" {
			continue
		}
		args = append(args, string(key)+"="+string(value))
	}
	return c.BaseURL() + c.Path() + "?" + strings.Join(args, "&")
}

// parseMultiQuery collects every occurrence of a query key, splitting
// comma-separated values as well.
func parseMultiQuery(c *fiber.Ctx, name string) []string {
	seen := make(map[string]struct{})
	var values []string

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) != name {
			continue
		}
		for _, v := range strings.Split(string(value), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	return values
}

// parseUintList converts string query values to ids, dropping malformed ones.
func parseUintList(values []string) []uint {
	ids := make([]uint, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// boolQuery interprets 1/true as true, anything else as false.
func boolQuery(c *fiber.Ctx, name string) bool {
	v := c.Query(name, "")
	return v == "1" || strings.EqualFold(v, "true")
}

// serviceError translates a service-layer failure into the matching HTTP
// response: field-keyed 400, conflict 400, 404, or a 500 for the rest.
func serviceError(c *fiber.Ctx, err error) error {
	var fieldErrs types.FieldErrors
	if errors.As(err, &fieldErrs) {
		return utils.FieldErrorResponse(c, fieldErrs)
	}

	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		return utils.ConflictResponse(c, conflict.Reason)
	}

	if errors.Is(err, services.ErrNotFound) {
		return utils.NotFoundResponse(c)
	}

	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
