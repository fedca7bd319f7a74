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

package errdef

import "errors"

// Common errors returned by the registry client.
var (
	// ErrMissingAuthHeader is returned when the registry answers the probe
	// request without a Www-Authenticate header. A registry that requires
	// authentication must challenge; a challenge-less response cannot be
	// negotiated against.
	ErrMissingAuthHeader = errors.New("missing Www-Authenticate header")

	// ErrMismatchedDigest is returned when fetched content does not match
	// the digest it was requested by.
	ErrMismatchedDigest = errors.New("mismatched digest")

	// ErrNotFound is returned when the registry reports that the requested
	// repository, manifest or blob does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSizeExceedsLimit is returned when a response body exceeds the
	// configured size limit.
	ErrSizeExceedsLimit = errors.New("size exceeds limit")
)
