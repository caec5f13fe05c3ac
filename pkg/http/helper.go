package http

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "sharedcal/pkg/errors"
	"sharedcal/pkg/model"
)

// ParseID parses a positive integer path parameter.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid id parameter: " + raw)
	}
	return id, nil
}

// ExtractDate reads the optional date query parameter. It returns nil when
// the parameter is absent or blank.
func ExtractDate(r *http.Request) (*model.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return nil, nil
	}

	date, err := model.ParseDate(raw)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date parameter: " + raw)
	}
	return &date, nil
}
