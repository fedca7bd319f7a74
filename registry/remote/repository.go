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
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/dkregistry/dkregistry-go/errdef"
	"github.com/dkregistry/dkregistry-go/internal/ioutil"
	"github.com/dkregistry/dkregistry-go/registry/remote/remoteerr"
)

const (
	// mediaTypeDockerManifest is the media type of a Docker image manifest,
	// schema version 2.
	mediaTypeDockerManifest = "application/vnd.docker.distribution.manifest.v2+json"

	// mediaTypeDockerManifestList is the media type of a Docker manifest
	// list.
	mediaTypeDockerManifestList = "application/vnd.docker.distribution.manifest.list.v2+json"

	// headerDockerContentDigest is the "Docker-Content-Digest" header.
	// If present on the response, it contains the canonical digest of the
	// uploaded blob.
	// Reference: https://distribution.github.io/distribution/spec/api/#digest-header
	headerDockerContentDigest = "Docker-Content-Digest"
)

// defaultMaxMetadataBytes specifies the default limit on how many response
// bytes are allowed in the server's response to the metadata APIs.
// See also: Client.MaxMetadataBytes
const defaultMaxMetadataBytes = 4 * 1024 * 1024 // 4 MiB

// manifestAcceptHeader advertises the manifest media types understood by the
// client, most specific first.
var manifestAcceptHeader = strings.Join([]string{
	ocispec.MediaTypeImageManifest,
	ocispec.MediaTypeImageIndex,
	mediaTypeDockerManifest,
	mediaTypeDockerManifestList,
}, ", ") + ", */*"

// limitReader returns a Reader that reads from r but stops with EOF after n
// bytes. If n <= 0, defaultMaxMetadataBytes is used.
func limitReader(r io.Reader, n int64) io.Reader {
	if n <= 0 {
		n = defaultMaxMetadataBytes
	}
	return io.LimitReader(r, n)
}

// maxMetadataBytes returns the effective metadata size limit.
func (c *Client) maxMetadataBytes() int64 {
	if c.MaxMetadataBytes > 0 {
		return c.MaxMetadataBytes
	}
	return defaultMaxMetadataBytes
}

// Tags lists the tags available in the repository. Results are passed to fn
// one page at a time; see also TagListPageSize.
//
// If last is NOT empty, the entries in the response start after the tag
// specified by last. Otherwise, the response starts from the top of the tag
// list.
//
// Reference: https://distribution.github.io/distribution/spec/api/#tags
func (c *Client) Tags(ctx context.Context, repository, last string, fn func(tags []string) error) error {
	url := buildRepositoryTagListURL(c.PlainHTTP, c.Registry, repository)
	var err error
	for err == nil {
		url, err = c.tags(ctx, last, fn, url)
		// clear `last` for subsequent pages
		last = ""
	}
	if err != errNoLink {
		return err
	}
	return nil
}

// tags returns a single page of the tag list with the next link.
func (c *Client) tags(ctx context.Context, last string, fn func(tags []string) error, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if c.TagListPageSize > 0 || last != "" {
		q := req.URL.Query()
		if c.TagListPageSize > 0 {
			q.Set("n", strconv.Itoa(c.TagListPageSize))
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
		Tags []string `json:"tags"`
	}
	lr := limitReader(resp.Body, c.MaxMetadataBytes)
	if err := json.NewDecoder(lr).Decode(&page); err != nil {
		return "", fmt.Errorf("%s %q: failed to decode response: %w", resp.Request.Method, resp.Request.URL, err)
	}
	if err := fn(page.Tags); err != nil {
		return "", err
	}

	return parseLink(resp)
}

// ManifestExists reports whether the repository holds a manifest for the
// given tag or digest reference.
func (c *Client) ManifestExists(ctx context.Context, repository, reference string) (bool, error) {
	url := buildRepositoryManifestURL(c.PlainHTTP, c.Registry, repository, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", manifestAcceptHeader)
	resp, err := c.do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, remoteerr.ParseErrorResponse(resp)
	}
}

// FetchManifest fetches the manifest identified by the given tag or digest
// reference, along with a descriptor for it.
//
// The returned content is verified: a digest reference must match the body,
// and a Docker-Content-Digest header, when returned, must agree with the
// resolved digest. The body may not exceed MaxMetadataBytes.
func (c *Client) FetchManifest(ctx context.Context, repository, reference string) (ocispec.Descriptor, []byte, error) {
	url := buildRepositoryManifestURL(c.PlainHTTP, c.Registry, repository, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ocispec.Descriptor{}, nil, err
	}
	req.Header.Set("Accept", manifestAcceptHeader)
	resp, err := c.do(req)
	if err != nil {
		return ocispec.Descriptor{}, nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ocispec.Descriptor{}, nil, fmt.Errorf("%s/%s:%s: %w", c.Registry, repository, reference, errdef.ErrNotFound)
	default:
		return ocispec.Descriptor{}, nil, remoteerr.ParseErrorResponse(resp)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return ocispec.Descriptor{}, nil, fmt.Errorf("%s %q: invalid response `Content-Type` header: %w", resp.Request.Method, resp.Request.URL, err)
	}
	content, err := ioutil.ReadAllCapped(resp.Body, c.maxMetadataBytes())
	if err != nil {
		return ocispec.Descriptor{}, nil, fmt.Errorf("%s %q: failed to read response body: %w", resp.Request.Method, resp.Request.URL, err)
	}

	expected, err := digest.Parse(reference)
	if err != nil {
		// the reference is a tag; the digest comes from the body
		expected = digest.FromBytes(content)
	} else if computed := digest.FromBytes(content); computed != expected {
		return ocispec.Descriptor{}, nil, fmt.Errorf("%s %q: content does not match %s: %w", resp.Request.Method, resp.Request.URL, expected, errdef.ErrMismatchedDigest)
	}
	if err := verifyContentDigest(resp, expected); err != nil {
		return ocispec.Descriptor{}, nil, err
	}

	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    expected,
		Size:      int64(len(content)),
	}
	return desc, content, nil
}

// BlobExists reports whether the repository holds a blob with the given
// digest.
func (c *Client) BlobExists(ctx context.Context, repository string, dgst digest.Digest) (bool, error) {
	url := buildRepositoryBlobURL(c.PlainHTTP, c.Registry, repository, dgst.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, remoteerr.ParseErrorResponse(resp)
	}
}

// FetchBlob fetches the blob with the given digest from the repository. The
// content is verified against the digest before it is returned.
func (c *Client) FetchBlob(ctx context.Context, repository string, dgst digest.Digest) ([]byte, error) {
	url := buildRepositoryBlobURL(c.PlainHTTP, c.Registry, repository, dgst.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", dgst, errdef.ErrNotFound)
	default:
		return nil, remoteerr.ParseErrorResponse(resp)
	}

	content, err := ioutil.ReadAllVerified(resp.Body, dgst, resp.ContentLength)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", resp.Request.Method, resp.Request.URL, err)
	}
	return content, nil
}

// verifyContentDigest verifies the Docker-Content-Digest header against the
// expected digest. The header is optional in the distribution specification
// and an absent header verifies trivially.
func verifyContentDigest(resp *http.Response, expected digest.Digest) error {
	header := resp.Header.Get(headerDockerContentDigest)
	if header == "" {
		return nil
	}
	contentDigest, err := digest.Parse(header)
	if err != nil {
		return fmt.Errorf("%s %q: invalid response header: `%s: %s`", resp.Request.Method, resp.Request.URL, headerDockerContentDigest, header)
	}
	if contentDigest != expected {
		return fmt.Errorf("%s %q: received %q when expecting %q: %w", resp.Request.Method, resp.Request.URL, contentDigest, expected, errdef.ErrMismatchedDigest)
	}
	return nil
}
