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
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/containerd/log"
)

// Challenge parsing errors.
var (
	// ErrInvalidChallengeEncoding is returned when the Www-Authenticate
	// header value is not valid UTF-8.
	ErrInvalidChallengeEncoding = errors.New("challenge is not valid UTF-8")

	// ErrMissingChallengeScheme is returned when no authentication scheme
	// token leads the Www-Authenticate header value.
	ErrMissingChallengeScheme = errors.New("missing challenge scheme")

	// ErrInvalidChallenge is returned when the challenge names an
	// unsupported scheme or lacks parameters the scheme requires.
	ErrInvalidChallenge = errors.New("invalid challenge")
)

// Scheme define the authentication method.
type Scheme byte

const (
	// SchemeUnknown represents unknown or unsupported schemes
	SchemeUnknown Scheme = iota

	// SchemeBasic represents the "Basic" HTTP authentication scheme.
	// Reference: https://tools.ietf.org/html/rfc7617
	SchemeBasic

	// SchemeBearer represents the Bearer token in OAuth 2.0.
	// Reference: https://tools.ietf.org/html/rfc6750
	SchemeBearer
)

func parseScheme(scheme string) Scheme {
	switch {
	case strings.EqualFold(scheme, "basic"):
		return SchemeBasic
	case strings.EqualFold(scheme, "bearer"):
		return SchemeBearer
	}
	return SchemeUnknown
}

// String return the string for the scheme.
func (s Scheme) String() string {
	switch s {
	case SchemeBasic:
		return "Basic"
	case SchemeBearer:
		return "Bearer"
	}
	return "Unknown"
}

// Challenge is the parsed content of a Www-Authenticate response header. The
// concrete type is either BasicChallenge or BearerChallenge; a value of any
// other type is never produced.
type Challenge interface {
	// Scheme returns the authentication scheme the challenge demands.
	Scheme() Scheme
}

// BasicChallenge demands Basic authentication against the registry itself.
type BasicChallenge struct {
	// Realm describes the protection space. It is informational only and
	// never dereferenced.
	Realm string
}

// Scheme returns SchemeBasic.
func (BasicChallenge) Scheme() Scheme { return SchemeBasic }

// BearerChallenge demands a bearer token issued by the token endpoint located
// at Realm.
type BearerChallenge struct {
	// Realm is the URL of the token endpoint.
	Realm string

	// Service is the name of the service hosting the protected resource.
	// Empty when the challenge did not carry one.
	Service string

	// Scope is the scope the registry suggested for the rejected request.
	// Empty when the challenge did not carry one.
	Scope string
}

// Scheme returns SchemeBearer.
func (BearerChallenge) Scheme() Scheme { return SchemeBearer }

// ParseChallenge parses the value of a "Www-Authenticate" header returned by
// the registry into a typed Challenge.
//
// The header follows the shape defined in RFC 7235 section 2.1:
//
//	challenge   = auth-scheme [ 1*SP ( token68 / #auth-param ) ]
//	auth-scheme = token
//	auth-param  = token BWS "=" BWS ( token / quoted-string )
//
// The scheme token must be a capitalized word ("Basic", "Bearer"). Parameter
// keys the scheme does not know are reported through the logger and ignored;
// a scheme whose required parameters are absent fails with
// ErrInvalidChallenge. No partial challenge is ever returned.
// References:
// - https://distribution.github.io/distribution/spec/auth/token/
// - https://tools.ietf.org/html/rfc7235#section-2.1
func ParseChallenge(ctx context.Context, header string) (Challenge, error) {
	if !utf8.ValidString(header) {
		return nil, ErrInvalidChallengeEncoding
	}

	schemeString, rest := parseToken(skipSpace(header))
	if !isSchemeToken(schemeString) {
		return nil, fmt.Errorf("%w in header %q", ErrMissingChallengeScheme, header)
	}
	params := parseParams(rest)

	switch scheme := parseScheme(schemeString); scheme {
	case SchemeBasic:
		realm, ok := params["realm"]
		if !ok {
			return nil, fmt.Errorf(`%w: Basic challenge without "realm"`, ErrInvalidChallenge)
		}
		reportIgnoredParams(ctx, scheme, params, "realm")
		return BasicChallenge{Realm: realm}, nil
	case SchemeBearer:
		realm, ok := params["realm"]
		if !ok {
			return nil, fmt.Errorf(`%w: Bearer challenge without "realm"`, ErrInvalidChallenge)
		}
		reportIgnoredParams(ctx, scheme, params, "realm", "service", "scope")
		return BearerChallenge{
			Realm:   realm,
			Service: params["service"],
			Scope:   params["scope"],
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidChallenge, schemeString)
	}
}

// isSchemeToken reports whether s has the shape of a scheme token: a leading
// uppercase letter followed by lowercase letters. Parameter keys are all
// lowercase, so a header starting with one is recognized as scheme-less.
func isSchemeToken(s string) bool {
	if len(s) < 2 || !unicode.IsUpper(rune(s[0])) {
		return false
	}
	for _, r := range s[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// parseParams extracts the auth-param list following the scheme token.
// Combining RFC 7235 section 2.1 with RFC 7230 section 7:
//
//	#auth-param => auth-param *( OWS "," OWS auth-param )
//
// Scanning stops at the first byte that fits neither production; everything
// collected up to that point is kept. Repeated keys keep the last value.
func parseParams(rest string) map[string]string {
	var params map[string]string
	var key, value string
	for {
		key, rest = parseToken(skipSpace(rest))
		if key == "" {
			return params
		}

		rest = skipSpace(rest)
		if rest == "" || rest[0] != '=' {
			return params
		}
		rest = skipSpace(rest[1:])
		if rest == "" {
			return params
		}

		if rest[0] == '"' {
			prefix, err := strconv.QuotedPrefix(rest)
			if err != nil {
				return params
			}
			value, err = strconv.Unquote(prefix)
			if err != nil {
				return params
			}
			rest = rest[len(prefix):]
		} else {
			value, rest = parseToken(rest)
			if value == "" {
				return params
			}
		}
		if params == nil {
			params = map[string]string{
				key: value,
			}
		} else {
			params[key] = value
		}

		rest = skipSpace(rest)
		if rest == "" || rest[0] != ',' {
			return params
		}
		rest = rest[1:]
	}
}

// reportIgnoredParams logs the parameter keys the scheme has no use for.
// Unknown keys are not an error; registries are free to attach extras.
func reportIgnoredParams(ctx context.Context, scheme Scheme, params map[string]string, known ...string) {
	var ignored []string
	for key := range params {
		if !slices.Contains(known, key) {
			ignored = append(ignored, key)
		}
	}
	if len(ignored) == 0 {
		return
	}
	slices.Sort(ignored)
	log.G(ctx).WithFields(log.Fields{
		"scheme": scheme.String(),
		"keys":   ignored,
	}).Warn("ignoring unknown challenge parameters")
}

// isNotTokenChar reports whether rune is not a `tchar` defined in RFC 7230
// section 3.2.6.
func isNotTokenChar(r rune) bool {
	// tchar = "!" / "#" / "$" / "%" / "&" / "'" / "*"
	//       / "+" / "-" / "." / "^" / "_" / "`" / "|" / "~"
	//       / DIGIT / ALPHA
	//       ; any VCHAR, except delimiters
	return (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') &&
		(r < '0' || r > '9') && !strings.ContainsRune("!#$%&'*+-.^_`|~", r)
}

// parseToken finds the next token from the given string. If no token found,
// an empty token is returned and the whole of the input is returned in rest.
// Note: Since token = 1*tchar, empty string is not a valid token.
func parseToken(s string) (token, rest string) {
	if i := strings.IndexFunc(s, isNotTokenChar); i != -1 {
		return s[:i], s[i:]
	}
	return s, ""
}

// skipSpace skips "bad" whitespace (BWS) defined in RFC 7230 section 3.2.3.
func skipSpace(s string) string {
	// OWS = *( SP / HTAB )
	//     ; optional whitespace
	// BWS = OWS
	//     ; "bad" whitespace
	if i := strings.IndexFunc(s, func(r rune) bool {
		return r != ' ' && r != '\t'
	}); i != -1 {
		return s[i:]
	}
	return s
}
