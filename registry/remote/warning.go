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

package remote

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	// headerWarning is the "Warning" header.
	// Reference: https://www.rfc-editor.org/rfc/rfc7234#section-5.5
	headerWarning = "Warning"

	// warnCode299 is the 299 warn-code.
	warnCode299 = 299

	// warnAgentUnknown is the unknown warn-agent.
	warnAgentUnknown = "-"
)

// errUnexpectedWarningFormat is returned by parseWarningHeader when
// an unexpected warning format is encountered.
var errUnexpectedWarningFormat = errors.New("unexpected warning format")

// WarningValue represents the value of the Warning header.
type WarningValue struct {
	// Code is the warn-code.
	Code int
	// Agent is the warn-agent.
	Agent string
	// Text is the warn-text.
	Text string
}

// Warning contains the value of the warning header and the registry that
// returned it.
type Warning struct {
	// WarningValue is the value of the warning header.
	WarningValue

	// Registry is the registry the warning was received from.
	Registry string
}

// parseWarningHeader parses the warning header into WarningValue.
// The registry API only defines warnings of the form `299 - "<text>"`;
// anything else is rejected.
func parseWarningHeader(header string) (WarningValue, error) {
	if len(header) < 9 || !strings.HasPrefix(header, `299 - "`) {
		return WarningValue{}, fmt.Errorf("%s: %w", header, errUnexpectedWarningFormat)
	}

	text, err := strconv.Unquote(header[6:])
	if err != nil {
		return WarningValue{}, fmt.Errorf("%s: unexpected quoting: %w", header, errUnexpectedWarningFormat)
	}

	return WarningValue{
		Code:  warnCode299,
		Agent: warnAgentUnknown,
		Text:  text,
	}, nil
}

// handleWarningHeaders dispatches each well-formed warning header of resp to
// handleWarning. Headers in unexpected formats are ignored.
func handleWarningHeaders(resp *http.Response, registry string, handleWarning func(Warning)) {
	for _, h := range resp.Header.Values(headerWarning) {
		if value, err := parseWarningHeader(h); err == nil {
			handleWarning(Warning{
				WarningValue: value,
				Registry:     registry,
			})
		}
	}
}
