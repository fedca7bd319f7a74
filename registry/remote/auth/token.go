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

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/containerd/log"

	"github.com/dkregistry/dkregistry-go/registry/remote/remoteerr"
)

// Token handshake errors.
var (
	// ErrNoCredentials is returned when a handshake needs a credential the
	// caller did not supply.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrMissingTokenField is returned when the token endpoint response
	// carries neither "token" nor "access_token".
	ErrMissingTokenField = errors.New("missing token field in response")

	// ErrMalformedTokenURL is returned when the challenge realm cannot
	// serve as a token endpoint URL. The error surfaces before any network
	// call is made.
	ErrMalformedTokenURL = errors.New("malformed token endpoint URL")
)

// maxResponseBytes limits how many bytes of a token endpoint response are
// read. Token responses are JSON documents of a few KiB at most; the token
// itself has to fit in an Authorization header later, so 128 KiB leaves
// plenty of room while keeping a misbehaving endpoint from ballooning memory.
// Reference: https://distribution.github.io/distribution/spec/auth/token/
const maxResponseBytes int64 = 128 * 1024 // 128 KiB

// defaultClientID is sent as client_id in the OAuth2 flow when the caller has
// not chosen one. The token endpoint records it for auditing.
const defaultClientID = "dkregistry-go"

// tokenResponse is the permissive shape of a token endpoint response body.
// The two token spellings are captured as pointers so that an absent field
// and an empty one can be told apart during validation.
// Reference: https://distribution.github.io/distribution/spec/auth/token/
type tokenResponse struct {
	Token        *string `json:"token"`
	AccessToken  *string `json:"access_token"`
	ExpiresIn    uint32  `json:"expires_in,omitempty"`
	IssuedAt     string  `json:"issued_at,omitempty"`
	RefreshToken string  `json:"refresh_token,omitempty"`
}

// resolve maps the dual-named token field onto a validated BearerAuth.
// "token" wins whenever present; "access_token" is the fallback. When both
// are present with different values the disagreement is logged and "token"
// is still used, keeping the pick deterministic.
func (tr *tokenResponse) resolve(ctx context.Context) (BearerAuth, error) {
	var token string
	switch {
	case tr.Token != nil:
		if tr.AccessToken != nil && *tr.AccessToken != *tr.Token {
			log.G(ctx).Warn(`response carries both "token" and "access_token" with different values, using "token"`)
		}
		token = *tr.Token
	case tr.AccessToken != nil:
		token = *tr.AccessToken
	default:
		return BearerAuth{}, ErrMissingTokenField
	}

	cred, err := NewBearerAuth(token)
	if err != nil {
		return BearerAuth{}, err
	}
	cred.ExpiresIn = tr.ExpiresIn
	cred.IssuedAt = tr.IssuedAt
	cred.RefreshToken = tr.RefreshToken
	log.G(ctx).WithField("token", cred.String()).Trace("received bearer token")
	return cred, nil
}

// parseTokenEndpoint validates that realm can serve as a token endpoint.
// A relative realm (a bare host, a path) fails with ErrMalformedTokenURL
// rather than producing a request that dials nothing.
func parseTokenEndpoint(realm string) (*url.URL, error) {
	u, err := url.Parse(realm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTokenURL, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%w: realm %q is not an absolute URL", ErrMalformedTokenURL, realm)
	}
	return u, nil
}

// buildTokenURL composes the token endpoint URL from the challenge realm, the
// service and the requested scopes: the service becomes the first query
// parameter when present, then one scope parameter per requested scope.
// Scopes are appended verbatim; callers pass them pre-encoded.
func buildTokenURL(realm, service string, scopes []string) (string, error) {
	if _, err := parseTokenEndpoint(realm); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(realm)
	sep := "?"
	if service != "" {
		sb.WriteString("?service=")
		sb.WriteString(service)
		sep = "&"
	}
	for _, scope := range scopes {
		sb.WriteString(sep)
		sb.WriteString("scope=")
		sb.WriteString(scope)
		sep = "&"
	}
	return sb.String(), nil
}

// FetchDistributionToken obtains a bearer token following the distribution
// token protocol: a GET against the challenge realm carrying the service and
// the requested scopes in the query. When basic is non-nil it authenticates
// the request against the token endpoint, not the registry. A nil basic means
// an anonymous token request.
//
// Any non-200 answer fails the handshake; retrying is the transport's
// business, never this function's.
// Reference: https://distribution.github.io/distribution/spec/auth/token/
func FetchDistributionToken(ctx context.Context, client *http.Client, challenge BearerChallenge, scopes []string, basic *BasicAuth) (BearerAuth, error) {
	tokenURL, err := buildTokenURL(challenge.Realm, challenge.Service, scopes)
	if err != nil {
		return BearerAuth{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL, nil)
	if err != nil {
		return BearerAuth{}, err
	}
	if basic != nil {
		basic.ApplyTo(req)
	}
	log.G(ctx).WithFields(log.Fields{
		"realm":   challenge.Realm,
		"service": challenge.Service,
		"scopes":  scopes,
	}).Debug("requesting bearer token")

	resp, err := client.Do(req)
	if err != nil {
		return BearerAuth{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return BearerAuth{}, remoteerr.ParseErrorResponse(resp)
	}

	var result tokenResponse
	lr := io.LimitReader(resp.Body, maxResponseBytes)
	if err := json.NewDecoder(lr).Decode(&result); err != nil {
		return BearerAuth{}, fmt.Errorf("%s %q: failed to decode response: %w", resp.Request.Method, resp.Request.URL, err)
	}
	return result.resolve(ctx)
}

// FetchOAuth2Token obtains a bearer token through the OAuth2 POST flow
// against the challenge realm. The refresh_token grant is used when
// refreshToken is non-empty, the password grant when basic is supplied;
// with neither the handshake cannot proceed and ErrNoCredentials is
// returned. clientID defaults to "dkregistry-go" when empty.
// Reference: https://distribution.github.io/distribution/spec/auth/oauth/
func FetchOAuth2Token(ctx context.Context, client *http.Client, challenge BearerChallenge, scopes []string, basic *BasicAuth, refreshToken, clientID string) (BearerAuth, error) {
	if _, err := parseTokenEndpoint(challenge.Realm); err != nil {
		return BearerAuth{}, err
	}

	form := url.Values{}
	if clientID == "" {
		clientID = defaultClientID
	}
	form.Set("client_id", clientID)
	if challenge.Service != "" {
		form.Set("service", challenge.Service)
	}
	switch {
	case refreshToken != "":
		form.Set("grant_type", "refresh_token")
		form.Set("refresh_token", refreshToken)
	case basic != nil:
		form.Set("grant_type", "password")
		form.Set("username", basic.Username)
		form.Set("password", basic.Password)
	default:
		return BearerAuth{}, fmt.Errorf("%w: the OAuth2 flow needs a refresh token or a username and password", ErrNoCredentials)
	}
	if len(scopes) > 0 {
		form.Set("scope", strings.Join(scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, challenge.Realm, strings.NewReader(form.Encode()))
	if err != nil {
		return BearerAuth{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	log.G(ctx).WithFields(log.Fields{
		"realm":      challenge.Realm,
		"service":    challenge.Service,
		"scopes":     scopes,
		"grant_type": form.Get("grant_type"),
	}).Debug("requesting bearer token over OAuth2")

	resp, err := client.Do(req)
	if err != nil {
		return BearerAuth{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return BearerAuth{}, remoteerr.ParseErrorResponse(resp)
	}

	var result tokenResponse
	lr := io.LimitReader(resp.Body, maxResponseBytes)
	if err := json.NewDecoder(lr).Decode(&result); err != nil {
		return BearerAuth{}, fmt.Errorf("%s %q: failed to decode response: %w", resp.Request.Method, resp.Request.URL, err)
	}
	return result.resolve(ctx)
}
