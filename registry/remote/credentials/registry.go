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
	"context"

	"github.com/dkregistry/dkregistry-go/registry/remote/auth"
)

// DockerHubServerAddress is the key used by the docker CLI for Docker Hub
// entries in the configuration file.
// Reference: https://github.com/moby/moby/blob/v24.0.0-beta.2/registry/config.go#L42
const DockerHubServerAddress = "https://index.docker.io/v1/"

// Credential returns a CredentialFunc that fetches credentials from the
// given store.
func Credential(store Store) auth.CredentialFunc {
	return func(ctx context.Context, hostport string) (auth.Credential, error) {
		hostport = ServerAddressFromHostname(hostport)
		if hostport == "" {
			return auth.EmptyCredential, nil
		}
		return store.Get(ctx, hostport)
	}
}

// ServerAddressFromRegistry maps a registry to a server address, which is used
// as the key for credentials store. The Docker CLI expects that the
// credentials of the registry "docker.io" will be added under the key
// "https://index.docker.io/v1/".
// Reference: https://github.com/moby/moby/blob/v24.0.0-beta.2/registry/config.go#L25-L48
func ServerAddressFromRegistry(registry string) string {
	if registry == "docker.io" {
		return DockerHubServerAddress
	}
	return registry
}

// ServerAddressFromHostname maps a hostname to a server address, which is used
// as the key for credentials store. It is expected that the traffic targeting
// the host "registry-1.docker.io" will be redirected to
// "https://index.docker.io/v1/".
// Reference: https://github.com/moby/moby/blob/v24.0.0-beta.2/registry/config.go#L25-L48
func ServerAddressFromHostname(hostname string) string {
	switch hostname {
	case "docker.io", "registry-1.docker.io":
		return DockerHubServerAddress
	default:
		return hostname
	}
}
