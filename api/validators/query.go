package validators

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/torquehub/torquehub-backend/pkg/errors"
	"github.com/torquehub/torquehub-backend/pkg/pagination"
)

// PaginationFromQuery reads page/limit query params with sane defaults.
func PaginationFromQuery(r *http.Request) pagination.Params {
	params := pagination.Params{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			params.Limit = v
		}
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			params.Page = v
		}
	}
	return params.Normalize()
}

// UUIDFromQuery parses an optional UUID query param.
func UUIDFromQuery(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).WithDetails(map[string]any{name: raw})
	}
	return &id, nil
}

// DayFromQuery parses an optional YYYY-MM-DD "date" query param,
// defaulting to today in UTC.
func DayFromQuery(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD").WithDetails(map[string]any{"date": raw})
	}
	return day, nil
}
