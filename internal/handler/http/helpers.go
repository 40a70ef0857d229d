package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/lrliang/hmf-ehr/internal/handler/http/response"
	"github.com/lrliang/hmf-ehr/internal/pkg/jwt"
)

// decodeBody decodes a JSON request body into dst. An empty body leaves dst
// at its zero value.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// pagination reads page and limit; page_size is accepted as an alias of limit.
func pagination(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	limitStr := q.Get("limit")
	if limitStr == "" {
		limitStr = q.Get("page_size")
	}
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
		limit = l
	}
	return page, limit
}

func listMeta(page, limit int, total int64) *response.Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

func actorFrom(r *http.Request) *string {
	if userID, ok := jwt.UserIDFromContext(r.Context()); ok {
		return &userID
	}
	return nil
}
