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

package ioutil

import (
	"fmt"
	"io"

	"github.com/opencontainers/go-digest"

	"github.com/dkregistry/dkregistry-go/errdef"
)

// ReadAllVerified reads r to completion and verifies the content against the
// expected digest. A non-negative size pins the exact content length;
// content running short fails the read and trailing data fails with
// errdef.ErrSizeExceedsLimit. Pass a negative size when the length is
// unknown.
func ReadAllVerified(r io.Reader, expected digest.Digest, size int64) ([]byte, error) {
	// verify while reading
	verifier := expected.Verifier()
	r = io.TeeReader(r, verifier)

	var buf []byte
	if size < 0 {
		var err error
		buf, err = io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read failed: %w", err)
		}
	} else {
		buf = make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read failed: %w", err)
		}
		// ensure EOF
		var peek [1]byte
		if _, err := io.ReadFull(r, peek[:]); err != io.EOF {
			return nil, fmt.Errorf("content length exceeds the expected %d bytes: %w", size, errdef.ErrSizeExceedsLimit)
		}
	}
	if !verifier.Verified() {
		return nil, fmt.Errorf("content does not match %s: %w", expected, errdef.ErrMismatchedDigest)
	}
	return buf, nil
}

// ReadAllCapped reads r to completion, failing with errdef.ErrSizeExceedsLimit
// once the content runs past limit bytes.
func ReadAllCapped(r io.Reader, limit int64) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	if int64(len(buf)) > limit {
		return nil, fmt.Errorf("content size exceeds %d bytes: %w", limit, errdef.ErrSizeExceedsLimit)
	}
	return buf, nil
}
