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

// Package executer runs the docker credential helper binaries. It is used
// by the native store to interact with the installed helpers.
package executer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	helpercreds "github.com/docker/docker-credential-helpers/credentials"

	"github.com/dkregistry/dkregistry-go/registry/remote/credentials/trace"
)

// dockerDesktopHelperName is the name of the docker credentials helper
// executable.
const dockerDesktopHelperName = "docker-credential-desktop.exe"

// Executer is an interface that simulates an executable binary.
type Executer interface {
	Execute(ctx context.Context, input io.Reader, action string) ([]byte, error)
}

// executable implements the Executer interface.
type executable struct {
	name string
}

// New returns a new Executer instance.
func New(name string) Executer {
	return &executable{
		name: name,
	}
}

// Execute runs the executable with the given action, writing input to its
// stdin. A non-zero exit reporting the credential helper not-found message
// is surfaced as the helpers' standard not-found error.
func (c *executable) Execute(ctx context.Context, input io.Reader, action string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.name, action)
	cmd.Stdin = input
	cmd.Stderr = os.Stderr
	trace := trace.ContextExecutableTrace(ctx)
	if trace != nil && trace.ExecuteStart != nil {
		trace.ExecuteStart(c.name, action)
	}
	output, err := cmd.Output()
	if trace != nil && trace.ExecuteDone != nil {
		trace.ExecuteDone(c.name, action, err)
	}
	if err != nil {
		switch execErr := err.(type) {
		case *exec.ExitError:
			if errMessage := string(bytes.TrimSpace(output)); errMessage != "" {
				if helpercreds.IsErrCredentialsNotFoundMessage(errMessage) {
					return nil, helpercreds.NewErrCredentialsNotFound()
				}
				return nil, errors.New(errMessage)
			}
		case *exec.Error:
			// check if the error is caused by Docker Desktop not running
			if execErr.Err == exec.ErrNotFound && c.name == dockerDesktopHelperName {
				return nil, errors.New("credentials store is configured to `desktop.exe` but Docker Desktop seems not running")
			}
		}
		return nil, err
	}
	return output, nil
}
