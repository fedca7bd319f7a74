/*
Copyright The dkregistry-go Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package remoteerr decodes structured error responses returned by registries
// implementing the distribution specification.
package remoteerr

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

// maxErrorBytes specifies the default limit on how many response bytes are
// allowed in the server's error response.
// A typical error message is around 200 bytes. Hence, 8 KiB should be
// sufficient.
const maxErrorBytes int64 = 8 * 1024 // 8 KiB

// ErrorCode is a symbolic identifier for an error condition reported by the
// registry.
// Reference: https://distribution.github.io/distribution/spec/api/#errors-2
type ErrorCode string

// Error codes commonly returned by registries.
const (
	CodeBlobUnknown     ErrorCode = "BLOB_UNKNOWN"
	CodeDenied          ErrorCode = "DENIED"
	CodeManifestUnknown ErrorCode = "MANIFEST_UNKNOWN"
	CodeNameUnknown     ErrorCode = "NAME_UNKNOWN"
	CodeTooManyRequests ErrorCode = "TOOMANYREQUESTS"
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"
)

// Error represents a single error entry in the registry's error body.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  any       `json:"detail,omitempty"`
}

// Error returns a error string describing the error.
func (e Error) Error() string {
	code := strings.Map(func(r rune) rune {
		if r == '_' {
			return ' '
		}
		return unicode.ToLower(r)
	}, string(e.Code))
	if e.Message == "" {
		return code
	}
	if e.Detail == nil {
		return fmt.Sprintf("%s: %s", code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", code, e.Message, e.Detail)
}

// Errors represents a list of errors returned by the registry.
type Errors []Error

// Error returns a error string describing the errors.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "<nil>"
	case 1:
		return errs[0].Error()
	}
	var errmsgs []string
	for _, err := range errs {
		errmsgs = append(errmsgs, err.Error())
	}
	return strings.Join(errmsgs, "; ")
}

// ResponseError is returned whenever the registry answers a request with an
// unexpected status code. It records the failing request and, when the body
// carried a structured error list, the decoded entries.
type ResponseError struct {
	// Method is the method of the failing request.
	Method string

	// URL is the URL of the failing request.
	URL *url.URL

	// StatusCode is the status code of the response.
	StatusCode int

	// Errors is the decoded error body, if any.
	Errors Errors
}

// Error returns a error string describing the error.
func (err *ResponseError) Error() string {
	var errmsg string
	if len(err.Errors) > 0 {
		errmsg = err.Errors.Error()
	} else {
		errmsg = http.StatusText(err.StatusCode)
	}
	return fmt.Sprintf("%s %q: response status code %d: %s", err.Method, err.URL, err.StatusCode, errmsg)
}

// ParseErrorResponse consumes resp.Body and builds a ResponseError out of the
// response. The body is decoded on a best-effort basis; a response that does
// not carry the structured error format still yields a ResponseError with the
// status code recorded.
func ParseErrorResponse(resp *http.Response) error {
	resultErr := &ResponseError{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
	}
	var body struct {
		Errors Errors `json:"errors"`
	}
	lr := io.LimitReader(resp.Body, maxErrorBytes)
	if err := json.NewDecoder(lr).Decode(&body); err == nil {
		resultErr.Errors = body.Errors
	}
	return resultErr
}
