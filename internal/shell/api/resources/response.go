// Package resources provides JSON:API resource implementations for the
// solarshop back office.
package resources

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/artpar/solarshop/internal/shell/store"
	"github.com/manyminds/api2go"
)

// =============================================================================
// Response Helper
// =============================================================================

// Response implements api2go.Responder for custom responses.
type Response struct {
	Code int
	Res  interface{}
	Meta map[string]interface{}
}

// Metadata returns additional metadata for the response.
func (r *Response) Metadata() map[string]interface{} {
	return r.Meta
}

// Result returns the response data.
func (r *Response) Result() interface{} {
	return r.Res
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	return r.Code
}

// =============================================================================
// Helper Functions
// =============================================================================

// httpError builds the responder/error pair api2go expects for a failure.
// Errors is filled in so callers outside api2go can read the status back.
func httpError(status int, msg string) (api2go.Responder, error) {
	httpErr := api2go.NewHTTPError(fmt.Errorf("%s", msg), msg, status)
	httpErr.Errors = []api2go.Error{{
		Status: strconv.Itoa(status),
		Title:  msg,
	}}
	return &Response{Code: status}, httpErr
}

// storeError maps a store error to a JSON:API error response.
func storeError(err error, entity string) (api2go.Responder, error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return httpError(http.StatusNotFound, entity+" not found")
	case errors.Is(err, store.ErrDuplicateSlug), errors.Is(err, store.ErrDuplicateSKU), errors.Is(err, store.ErrDuplicateID):
		return httpError(http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrForeignKey):
		return httpError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrConflict):
		return httpError(http.StatusConflict, err.Error())
	default:
		return &Response{Code: http.StatusInternalServerError}, err
	}
}

// listOptions parses page[size], page[offset] and page[number].
func listOptions(req api2go.Request) store.ListOptions {
	opts := store.DefaultListOptions()

	if limit, ok := req.QueryParams["page[size]"]; ok && len(limit) > 0 {
		if l, err := strconv.Atoi(limit[0]); err == nil {
			opts.Limit = l
		}
	}
	if offset, ok := req.QueryParams["page[offset]"]; ok && len(offset) > 0 {
		if o, err := strconv.Atoi(offset[0]); err == nil {
			opts.Offset = o
		}
	}
	if pageNum, ok := req.QueryParams["page[number]"]; ok && len(pageNum) > 0 {
		if pn, err := strconv.Atoi(pageNum[0]); err == nil && pn > 0 {
			opts.Offset = (pn - 1) * opts.Limit
		}
	}
	return opts.Normalize()
}

// queryParam returns the first value of a query parameter.
func queryParam(req api2go.Request, name string) string {
	if v, ok := req.QueryParams[name]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

func listMeta(n int, opts store.ListOptions) map[string]interface{} {
	return map[string]interface{}{
		"total":  n,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	}
}
