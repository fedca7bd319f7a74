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
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// TokenSource adapts the distribution token flow to the oauth2 package, for
// callers that integrate with oauth2-aware transports. Each Token call runs
// FetchDistributionToken against the challenge; wrapping in
// oauth2.ReuseTokenSource makes repeated calls reuse the token until the
// expiry reported by the endpoint passes.
//
// The client falls back to http.DefaultClient when nil.
func TokenSource(ctx context.Context, client *http.Client, challenge BearerChallenge, scopes []string, basic *BasicAuth) oauth2.TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return oauth2.ReuseTokenSource(nil, &tokenSource{
		ctx:       ctx,
		client:    client,
		challenge: challenge,
		scopes:    scopes,
		basic:     basic,
	})
}

type tokenSource struct {
	ctx       context.Context
	client    *http.Client
	challenge BearerChallenge
	scopes    []string
	basic     *BasicAuth
}

// Token fetches a fresh token from the token endpoint.
func (ts *tokenSource) Token() (*oauth2.Token, error) {
	cred, err := FetchDistributionToken(ts.ctx, ts.client, ts.challenge, ts.scopes, ts.basic)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{
		AccessToken: cred.Token(),
		TokenType:   "Bearer",
	}
	if cred.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(cred.ExpiresIn) * time.Second)
	}
	return token, nil
}

// NewAuthClient returns an http.Client whose transport attaches tokens drawn
// from ts to every request.
func NewAuthClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, ts)
}
