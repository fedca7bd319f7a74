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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkregistry/dkregistry-go/errdef"
)

type checkOptions struct {
	clientOptions
	registry string
	scopes   []string
}

func checkCmd() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check <registry>",
		Short: "Check whether the stored credential is accepted by a registry",
		Long: `Check whether the stored credential is accepted by a registry

Example - Check access to a local registry:
  dkregistry check localhost:5000
Example - Check push access to a repository:
  dkregistry check --scope repository:myrepo:pull,push localhost:5000
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.registry = args[0]
			return runCheck(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.scopes, "scope", nil, "token scope to request during the handshake")
	opts.installFlags(cmd)
	return cmd
}

func runCheck(ctx context.Context, opts checkOptions) error {
	store, err := opts.credentialStore()
	if err != nil {
		return err
	}
	client, err := opts.newClient(opts.registry, store)
	if err != nil {
		return err
	}
	authenticated, err := client.Authenticate(ctx, opts.scopes)
	if err != nil {
		if errors.Is(err, errdef.ErrMissingAuthHeader) {
			fmt.Printf("%s does not request authentication\n", opts.registry)
			return nil
		}
		return err
	}
	ok, err := authenticated.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s rejected the authorization", opts.registry)
	}
	authorization := authenticated.Authorization()
	fmt.Printf("%s accepted %s authorization\n", opts.registry, authorization.Scheme())
	return nil
}
