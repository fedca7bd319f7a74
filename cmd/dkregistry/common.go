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

package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/docker/go-connections/tlsconfig"
	"github.com/spf13/cobra"

	"github.com/dkregistry/dkregistry-go/errdef"
	"github.com/dkregistry/dkregistry-go/registry/remote"
	"github.com/dkregistry/dkregistry-go/registry/remote/credentials"
	"github.com/dkregistry/dkregistry-go/registry/remote/retry"
)

// clientOptions carries the flags shared by every command that talks to
// a registry.
type clientOptions struct {
	plainHTTP bool
	insecure  bool
	caFile    string
	certFile  string
	keyFile   string
	configs   []string
}

func (opts *clientOptions) installFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&opts.plainHTTP, "plain-http", false, "use plain http and not https")
	cmd.Flags().BoolVar(&opts.insecure, "insecure", false, "allow connections to SSL registry without certs")
	cmd.Flags().StringVar(&opts.caFile, "ca-file", "", "server certificate authority file for the remote registry")
	cmd.Flags().StringVar(&opts.certFile, "cert-file", "", "client certificate file for the remote registry")
	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "client private key file for the remote registry")
	cmd.Flags().StringArrayVarP(&opts.configs, "config", "c", nil, "auth config path")
}

// credentialStore opens the credential store backing the --config flags,
// falling back to the default Docker config when none are given.
func (opts *clientOptions) credentialStore() (credentials.Store, error) {
	storeOpts := credentials.StoreOptions{
		AllowPlaintextPut:        true,
		DetectDefaultNativeStore: true,
	}
	if len(opts.configs) == 0 {
		return credentials.NewStoreFromDocker(storeOpts)
	}
	primary, err := credentials.NewStore(opts.configs[0], storeOpts)
	if err != nil {
		return nil, err
	}
	if len(opts.configs) == 1 {
		return primary, nil
	}
	fallbacks := make([]credentials.Store, 0, len(opts.configs)-1)
	for _, config := range opts.configs[1:] {
		store, err := credentials.NewStore(config, storeOpts)
		if err != nil {
			return nil, err
		}
		fallbacks = append(fallbacks, store)
	}
	return credentials.NewStoreWithFallbacks(primary, fallbacks...), nil
}

// newClient builds a registry client for the given registry, wired to
// the credential store and the TLS flags.
func (opts *clientOptions) newClient(registry string, store credentials.Store) (*remote.Client, error) {
	client := remote.NewClient(hostname(registry))
	client.PlainHTTP = opts.plainHTTP
	client.Credential = credentials.Credential(store)
	if opts.insecure || opts.caFile != "" || opts.certFile != "" || opts.keyFile != "" {
		config, err := tlsconfig.Client(tlsconfig.Options{
			CAFile:             opts.caFile,
			CertFile:           opts.certFile,
			KeyFile:            opts.keyFile,
			InsecureSkipVerify: opts.insecure,
		})
		if err != nil {
			return nil, err
		}
		client.Client = &http.Client{
			Transport: retry.NewTransport(&http.Transport{
				TLSClientConfig: config,
			}),
		}
	}
	return client, nil
}

// hostname resolves the wire host of a registry. The conventional name
// docker.io has no registry endpoint of its own.
func hostname(registry string) string {
	if registry == "docker.io" {
		return "registry-1.docker.io"
	}
	return registry
}

// authenticate runs the handshake for the given scopes. Registries that
// answer without a challenge, such as open test registries, are treated
// as anonymously accessible and the original client is returned.
func authenticate(ctx context.Context, client *remote.Client, scopes []string) (*remote.Client, error) {
	authenticated, err := client.Authenticate(ctx, scopes)
	if err != nil {
		if errors.Is(err, errdef.ErrMissingAuthHeader) {
			return client, nil
		}
		return nil, err
	}
	return authenticated, nil
}
