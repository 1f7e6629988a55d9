package router

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/pkg/goerror"
)

// Request wraps http.Request with helpers for inbound handlers.
type Request struct {
	// Request is the underlying http.Request.
	*http.Request
}

// GetQuery returns the trimmed query value for key.
func (r *Request) GetQuery(key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// DecodeBody decodes the JSON body into dst.
//
// An empty body is accepted when allowEmpty is true so endpoints with only
// optional fields can be called without a payload.
func (r *Request) DecodeBody(dst any, allowEmpty ...bool) error {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		if len(allowEmpty) > 0 && allowEmpty[0] {
			return nil
		}
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if err == io.EOF && len(allowEmpty) > 0 && allowEmpty[0] {
			return nil
		}
		return goerror.NewInvalidFormat()
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return goerror.NewInvalidFormat()
	}

	return nil
}
