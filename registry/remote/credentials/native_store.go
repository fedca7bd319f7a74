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

package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	helpercreds "github.com/docker/docker-credential-helpers/credentials"

	"github.com/dkregistry/dkregistry-go/registry/remote/auth"
	"github.com/dkregistry/dkregistry-go/registry/remote/credentials/internal/executer"
)

const (
	// remoteCredentialsPrefix is the prefix of the credential helper
	// executables.
	remoteCredentialsPrefix = "docker-credential-"

	// emptyUsername marks a credential that carries a refresh token instead
	// of a username and password pair.
	// Reference: https://docs.docker.com/engine/reference/commandline/login/#credential-helper-protocol
	emptyUsername = "<token>"
)

// nativeStore implements a credentials store using native keychain to keep
// credentials secure.
type nativeStore struct {
	exec executer.Executer
}

// NewNativeStore creates a new native store that uses a remote helper program
// to manage credentials.
//
// The argument of NewNativeStore should be the suffix of the program name,
// i.e. "pass" for the helper executable "docker-credential-pass".
//
// Reference: https://docs.docker.com/engine/reference/commandline/login/#credentials-store
func NewNativeStore(helperSuffix string) Store {
	return &nativeStore{
		exec: executer.New(remoteCredentialsPrefix + helperSuffix),
	}
}

// NewDefaultNativeStore returns a native store based on the platform-default
// docker credentials helper and a bool indicating whether the helper is
// available.
//
// References:
//   - https://docs.docker.com/engine/reference/commandline/login/#credentials-store
//   - https://docs.docker.com/engine/reference/commandline/cli/#docker-cli-configuration-file-configjson-properties
func NewDefaultNativeStore() (Store, bool) {
	if helper := getDefaultHelperSuffix(); helper != "" {
		return NewNativeStore(helper), true
	}
	return nil, false
}

// Get retrieves credentials from the store for the given server.
func (ns *nativeStore) Get(ctx context.Context, serverAddress string) (auth.Credential, error) {
	out, err := ns.exec.Execute(ctx, strings.NewReader(serverAddress), "get")
	if err != nil {
		if helpercreds.IsErrCredentialsNotFound(err) {
			// do not return an error if the credentials are not in the keychain
			return auth.EmptyCredential, nil
		}
		return auth.EmptyCredential, err
	}
	var dockerCred helpercreds.Credentials
	if err := json.Unmarshal(out, &dockerCred); err != nil {
		return auth.EmptyCredential, err
	}
	var cred auth.Credential
	// bearer auth is used if the username is "<token>"
	if dockerCred.Username == emptyUsername {
		cred.RefreshToken = dockerCred.Secret
	} else {
		cred.Username = dockerCred.Username
		cred.Password = dockerCred.Secret
	}
	return cred, nil
}

// Put saves credentials into the store.
func (ns *nativeStore) Put(ctx context.Context, serverAddress string, cred auth.Credential) error {
	dockerCred := &helpercreds.Credentials{
		ServerURL: serverAddress,
		Username:  cred.Username,
		Secret:    cred.Password,
	}
	if cred.RefreshToken != "" {
		dockerCred.Username = emptyUsername
		dockerCred.Secret = cred.RefreshToken
	}
	credJSON, err := json.Marshal(dockerCred)
	if err != nil {
		return err
	}
	_, err = ns.exec.Execute(ctx, bytes.NewReader(credJSON), "store")
	return err
}

// Delete removes credentials from the store for the given server.
func (ns *nativeStore) Delete(ctx context.Context, serverAddress string) error {
	_, err := ns.exec.Execute(ctx, strings.NewReader(serverAddress), "erase")
	return err
}

// getDefaultHelperSuffix returns the platform default credential helper
// suffix when the corresponding helper executable is available, and an empty
// string otherwise.
func getDefaultHelperSuffix() string {
	platformDefault := getPlatformDefaultHelperSuffix()
	if _, err := exec.LookPath(remoteCredentialsPrefix + platformDefault); err == nil {
		return platformDefault
	}
	return ""
}
