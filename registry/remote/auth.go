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
	"errors"
	"fmt"
	"net/http"

	"github.com/containerd/log"

	"github.com/dkregistry/dkregistry-go/errdef"
	"github.com/dkregistry/dkregistry-go/registry/remote/auth"
	"github.com/dkregistry/dkregistry-go/registry/remote/credentials"
	"github.com/dkregistry/dkregistry-go/registry/remote/remoteerr"
)

// ErrInvalidCredential is returned by Login when the registry rejects the
// credential being stored.
var ErrInvalidCredential = errors.New("invalid credential")

// Authenticate negotiates authentication with the registry and returns a new
// client carrying the resolved credential. The client it is called on is
// left untouched.
//
// The negotiation probes the base discovery endpoint without credentials,
// parses the Www-Authenticate challenge and routes on its scheme: a Basic
// challenge wraps the supplied username and password, a Bearer challenge
// runs the token handshake against the challenge realm with the given
// scopes. A response without a challenge header fails with
// errdef.ErrMissingAuthHeader no matter its status; a registry that requires
// no authentication has nothing to negotiate.
func (c *Client) Authenticate(ctx context.Context, scopes []string) (*Client, error) {
	// the probe must not present inherited credentials: they may predate
	// the challenge about to be issued and would be leaked to whatever
	// endpoint the registry redirects to.
	probe := c.clone()
	probe.auth = nil

	url := buildRegistryBaseURL(c.PlainHTTP, c.Registry)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := probe.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	header := resp.Header.Get("Www-Authenticate")
	if header == "" {
		return nil, fmt.Errorf("%s %q: response status code %d: %w", req.Method, req.URL, resp.StatusCode, errdef.ErrMissingAuthHeader)
	}
	challenge, err := auth.ParseChallenge(ctx, header)
	if err != nil {
		return nil, err
	}
	log.G(ctx).WithFields(log.Fields{
		"registry": c.Registry,
		"scheme":   challenge.Scheme().String(),
	}).Debug("received authentication challenge")

	cred, err := c.credential(ctx)
	if err != nil {
		return nil, err
	}

	var resolved auth.Authorization
	switch ch := challenge.(type) {
	case auth.BasicChallenge:
		if cred.Username == "" {
			return nil, fmt.Errorf("%w: registry %q requires Basic authentication", auth.ErrNoCredentials, c.Registry)
		}
		resolved = auth.BasicAuth{Username: cred.Username, Password: cred.Password}
	case auth.BearerChallenge:
		resolved, err = c.fetchBearer(ctx, ch, scopes, cred)
		if err != nil {
			return nil, err
		}
	}

	authenticated := c.clone()
	authenticated.auth = resolved
	return authenticated, nil
}

// IsAuthenticated probes the base discovery endpoint with the current
// credential, if any, and classifies the answer purely by status code:
// 200 means authenticated, 401 means not. Any other status is unexpected
// and returned as an error. The call never mutates the client and never
// parses challenges.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	url := buildRegistryBaseURL(c.PlainHTTP, c.Registry)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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
	case http.StatusUnauthorized:
		return false, nil
	default:
		return false, remoteerr.ParseErrorResponse(resp)
	}
}

// credential resolves the raw credential supplied for the registry.
func (c *Client) credential(ctx context.Context) (auth.Credential, error) {
	if c.Credential == nil {
		return auth.EmptyCredential, nil
	}
	return c.Credential(ctx, c.Registry)
}

// fetchBearer answers a Bearer challenge. A store-supplied access token
// short-cuts the handshake; a refresh token, or ForceAttemptOAuth2, routes
// through the OAuth2 POST flow; everything else uses the distribution GET
// flow. The username and password, when present, authenticate against the
// token endpoint, never the registry.
func (c *Client) fetchBearer(ctx context.Context, challenge auth.BearerChallenge, scopes []string, cred auth.Credential) (auth.Authorization, error) {
	if cred.AccessToken != "" {
		bearer, err := auth.NewBearerAuth(cred.AccessToken)
		if err != nil {
			return nil, err
		}
		return bearer, nil
	}

	var basic *auth.BasicAuth
	if cred.Username != "" {
		basic = &auth.BasicAuth{Username: cred.Username, Password: cred.Password}
	}
	if cred.RefreshToken != "" || c.ForceAttemptOAuth2 {
		bearer, err := auth.FetchOAuth2Token(ctx, c.client(), challenge, scopes, basic, cred.RefreshToken, c.ClientID)
		if err != nil {
			return nil, err
		}
		return bearer, nil
	}
	bearer, err := auth.FetchDistributionToken(ctx, c.client(), challenge, scopes, basic)
	if err != nil {
		return nil, err
	}
	return bearer, nil
}

// Login validates cred against the registry served by c and, once accepted,
// persists it in store under the registry's server address. Validation runs
// on a clone of c; the original client keeps its credential resolution and
// authentication state.
func Login(ctx context.Context, store credentials.Store, c *Client, cred auth.Credential) error {
	clone := c.clone()
	clone.Credential = auth.StaticCredential(c.Registry, cred)
	authenticated, err := clone.Authenticate(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to validate the credentials for %s: %w", c.Registry, err)
	}
	ok, err := authenticated.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to validate the credentials for %s: %w", c.Registry, err)
	}
	if !ok {
		return fmt.Errorf("failed to validate the credentials for %s: %w", c.Registry, ErrInvalidCredential)
	}

	hostname := credentials.ServerAddressFromHostname(c.Registry)
	if err := store.Put(ctx, hostname, cred); err != nil {
		return fmt.Errorf("failed to store the credentials for %s: %w", hostname, err)
	}
	return nil
}

// Logout deletes the credential stored for the given registry.
func Logout(ctx context.Context, store credentials.Store, registry string) error {
	registry = credentials.ServerAddressFromHostname(registry)
	if err := store.Delete(ctx, registry); err != nil {
		return fmt.Errorf("failed to delete the credential for %s: %w", registry, err)
	}
	return nil
}
