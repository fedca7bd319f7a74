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

// Package remote provides a client to remote registries implementing the
// distribution specification, including the authentication negotiation the
// registry demands through Www-Authenticate challenges.
package remote

import (
	"net/http"

	"github.com/dkregistry/dkregistry-go/registry/remote/auth"
	"github.com/dkregistry/dkregistry-go/registry/remote/retry"
)

// Client is an HTTP client to a remote registry.
//
// A Client is a value: Authenticate does not mutate the client it is called
// on but returns a new one carrying the resolved credential. Cloned clients
// are independent, so concurrent use of separate clones needs no
// coordination.
type Client struct {
	// Registry is the <host>[:<port>] of the remote registry.
	Registry string

	// PlainHTTP signals the transport to access the remote registry via
	// HTTP instead of HTTPS.
	PlainHTTP bool

	// Client is the underlying HTTP client used to access the remote
	// registry. If nil, retry.DefaultClient is used.
	Client *http.Client

	// Header contains extra headers to be added to every request.
	Header http.Header

	// Credential resolves the credential supplied for the registry, used
	// either against the registry itself (Basic challenge) or against the
	// token endpoint (Bearer challenge). If nil, the credential is always
	// resolved to auth.EmptyCredential.
	Credential auth.CredentialFunc

	// ClientID is sent as client_id when the OAuth2 flow is used. If
	// empty a library default is sent.
	ClientID string

	// ForceAttemptOAuth2 routes the Bearer handshake through the OAuth2
	// POST flow even when no refresh token is at hand.
	ForceAttemptOAuth2 bool

	// CatalogPageSize specifies the page size when invoking the catalog
	// API. If zero, the page size is determined by the remote registry.
	CatalogPageSize int

	// TagListPageSize specifies the page size when invoking the tag list
	// API. If zero, the page size is determined by the remote registry.
	TagListPageSize int

	// MaxMetadataBytes specifies a limit on how many response bytes are
	// allowed in the server's response to metadata APIs such as catalog,
	// tag list and manifest fetch. If zero, a default (currently 4 MiB)
	// is used.
	MaxMetadataBytes int64

	// HandleWarning handles the warning returned by the remote server.
	// If nil, the warnings are ignored.
	HandleWarning func(warning Warning)

	// auth is the authorization resolved by Authenticate. It is nil until
	// a handshake succeeds and is only ever replaced wholesale.
	auth auth.Authorization
}

// NewClient creates a client to the remote registry identified by its
// host name and optional port.
// Example: localhost:5000
func NewClient(registry string) *Client {
	return &Client{
		Registry: registry,
	}
}

// Authorization returns the authorization resolved by Authenticate, or nil
// when the client has not authenticated.
func (c *Client) Authorization() auth.Authorization {
	return c.auth
}

// clone returns a copy of c. The copy shares the transport but owns its
// header map, so decorating one client never leaks into another.
func (c *Client) clone() *Client {
	clone := *c
	if c.Header != nil {
		clone.Header = c.Header.Clone()
	}
	return &clone
}

// client returns the underlying HTTP client to use.
func (c *Client) client() *http.Client {
	if c.Client == nil {
		return retry.DefaultClient
	}
	return c.Client
}

// do sends req with the client headers and the resolved authorization, if
// any, attached. Warning headers on the response are dispatched to
// HandleWarning.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	for key, values := range c.Header {
		req.Header[key] = append(req.Header[key], values...)
	}
	if c.auth != nil {
		c.auth.ApplyTo(req)
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, err
	}
	if c.HandleWarning != nil {
		handleWarningHeaders(resp, c.Registry, c.HandleWarning)
	}
	return resp, nil
}
