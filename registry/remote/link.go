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
	"strings"
)

// errNoLink signals that the response carries no Link header and the listing
// is complete.
var errNoLink = errors.New("no Link header in response")

// parseLink extracts the next page URL from the response's Link header,
// resolving it against the request URL when relative.
// Reference: https://distribution.github.io/distribution/spec/api/#pagination
func parseLink(resp *http.Response) (string, error) {
	link := resp.Header.Get("Link")
	if link == "" {
		return "", errNoLink
	}
	if link[0] != '<' {
		return "", fmt.Errorf("invalid next link %q: missing '<'", link)
	}
	i := strings.IndexByte(link, '>')
	if i == -1 {
		return "", fmt.Errorf("invalid next link %q: missing '>'", link)
	}
	link = link[1:i]

	linkURL, err := resp.Request.URL.Parse(link)
	if err != nil {
		return "", err
	}
	return linkURL.String(), nil
}
