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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dkregistry/dkregistry-go/registry/remote/remoteerr"
)

// Repositories lists the name of repositories available in the registry.
// Results are passed to fn one page at a time; see also CatalogPageSize.
//
// If last is NOT empty, the entries in the response start after the
// repository specified by last. Otherwise, the response starts from the top
// of the repository list.
//
// Listing the catalog commonly requires the "registry:catalog:*" scope;
// see auth.ScopeRegistryCatalog.
//
// Reference: https://distribution.github.io/distribution/spec/api/#catalog
func (c *Client) Repositories(ctx context.Context, last string, fn func(repositories []string) error) error {
	url := buildRegistryCatalogURL(c.PlainHTTP, c.Registry)
	var err error
	for err == nil {
		url, err = c.repositories(ctx, last, fn, url)
		// clear `last` for subsequent pages
		last = ""
	}
	if err != errNoLink {
		return err
	}
	return nil
}

// repositories returns a single page of the repository list with the next
// link.
func (c *Client) repositories(ctx context.Context, last string, fn func(repositories []string) error, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if c.CatalogPageSize > 0 || last != "" {
		q := req.URL.Query()
		if c.CatalogPageSize > 0 {
			q.Set("n", strconv.Itoa(c.CatalogPageSize))
		}
		if last != "" {
			q.Set("last", last)
		}
		req.URL.RawQuery = q.Encode()
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", remoteerr.ParseErrorResponse(resp)
	}
	var page struct {
		Repositories []string `json:"repositories"`
	}
	lr := limitReader(resp.Body, c.MaxMetadataBytes)
	if err := json.NewDecoder(lr).Decode(&page); err != nil {
		return "", fmt.Errorf("%s %q: failed to decode response: %w", resp.Request.Method, resp.Request.URL, err)
	}
	if err := fn(page.Repositories); err != nil {
		return "", err
	}

	return parseLink(resp)
}
