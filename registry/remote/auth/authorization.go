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
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidAuthToken is returned when a token endpoint resolves to a token
// that is empty or the literal "unauthenticated". Some registries hand these
// out instead of failing the token request; presenting one to the registry
// only produces confusing 401s later.
var ErrInvalidAuthToken = errors.New("invalid auth token")

// Authorization is an authentication method resolved for a registry. The
// concrete type is either BasicAuth or BearerAuth. An Authorization is owned
// by the client value that resolved it and is replaced wholesale on
// re-authentication, never mutated.
type Authorization interface {
	// Scheme returns the scheme the authorization authenticates with.
	Scheme() Scheme

	// ApplyTo attaches the authorization to req by setting the
	// Authorization header. Applying the same authorization twice leaves
	// the request unchanged.
	ApplyTo(req *http.Request)
}

// BasicAuth authenticates with a username and password pair.
type BasicAuth struct {
	// Username is the name of the user.
	Username string

	// Password is the secret associated with the username. May be empty.
	Password string
}

// Scheme returns SchemeBasic.
func (BasicAuth) Scheme() Scheme { return SchemeBasic }

// ApplyTo sets the Authorization header to the RFC 7617 encoding of the pair.
func (a BasicAuth) ApplyTo(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// BearerAuth authenticates with an opaque token obtained from a token
// endpoint. The zero value is not usable; construct through NewBearerAuth so
// the token invariant holds.
type BearerAuth struct {
	token string

	// ExpiresIn is the advisory lifetime of the token in seconds, as
	// reported by the token endpoint. Zero when not reported. The client
	// does not act on it; re-authentication is the caller's call.
	ExpiresIn uint32

	// IssuedAt is the RFC 3339 issue time reported by the token endpoint,
	// if any.
	IssuedAt string

	// RefreshToken is an optional token for the OAuth2 refresh_token
	// grant, handed out by token endpoints that support offline access.
	RefreshToken string
}

// NewBearerAuth validates token and wraps it into a BearerAuth. The empty
// string and the literal "unauthenticated" are rejected with
// ErrInvalidAuthToken.
func NewBearerAuth(token string) (BearerAuth, error) {
	if token == "" || token == "unauthenticated" {
		return BearerAuth{}, fmt.Errorf("%w: %q", ErrInvalidAuthToken, token)
	}
	return BearerAuth{token: token}, nil
}

// Scheme returns SchemeBearer.
func (BearerAuth) Scheme() Scheme { return SchemeBearer }

// ApplyTo sets the Authorization header to the bearer token.
func (a BearerAuth) ApplyTo(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.token)
}

// Token returns the raw token. Callers emitting diagnostics must use String
// instead.
func (a BearerAuth) Token() string {
	return a.token
}

// String returns the masked form of the token, safe for logs. The raw token
// never goes through formatting.
func (a BearerAuth) String() string {
	return maskToken(a.token)
}

// maskToken hides the interior of token, keeping at most the first and the
// last character visible. The masked span is [min(1, len-1), max(len-1, 1)),
// so a single-character token masks fully and a two-character token stays as
// is.
func maskToken(token string) string {
	l := len(token)
	if l == 0 {
		return ""
	}
	start := min(1, l-1)
	end := max(l-1, 1)
	return token[:start] + strings.Repeat("*", end-start) + token[end:]
}
