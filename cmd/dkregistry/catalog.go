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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkregistry/dkregistry-go/internal/syncutil"
	"github.com/dkregistry/dkregistry-go/registry/remote/auth"
)

type catalogOptions struct {
	clientOptions
	registry    string
	last        string
	pageSize    int
	showTags    bool
	concurrency int
}

func catalogCmd() *cobra.Command {
	var opts catalogOptions
	cmd := &cobra.Command{
		Use:   "catalog <registry>",
		Short: "List the repositories in a registry",
		Long: `List the repositories in a registry

Example - List all repositories:
  dkregistry catalog localhost:5000
Example - List repositories with their tags:
  dkregistry catalog --show-tags localhost:5000
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.registry = args[0]
			return runCatalog(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.last, "last", "", "start listing after this repository")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "number of repositories to request per page")
	cmd.Flags().BoolVar(&opts.showTags, "show-tags", false, "list the tags of each repository")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 3, "number of tag listings to run in parallel")
	opts.installFlags(cmd)
	return cmd
}

func runCatalog(ctx context.Context, opts catalogOptions) error {
	store, err := opts.credentialStore()
	if err != nil {
		return err
	}
	client, err := opts.newClient(opts.registry, store)
	if err != nil {
		return err
	}
	client.CatalogPageSize = opts.pageSize

	authenticated, err := authenticate(ctx, client, []string{auth.ScopeRegistryCatalog})
	if err != nil {
		return err
	}
	var repositories []string
	if err := authenticated.Repositories(ctx, opts.last, func(page []string) error {
		repositories = append(repositories, page...)
		return nil
	}); err != nil {
		return err
	}
	if !opts.showTags {
		for _, repository := range repositories {
			fmt.Println(repository)
		}
		return nil
	}

	// Tag listing needs pull access, which the catalog token does not
	// grant. Run one handshake for all repositories instead of one per
	// repository.
	scopes := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		scopes = append(scopes, auth.ScopeRepository(repository, auth.ActionPull))
	}
	tagged, err := authenticate(ctx, client, scopes)
	if err != nil {
		return err
	}
	tags, err := syncutil.Map(ctx, int64(opts.concurrency), repositories, func(ctx context.Context, repository string) ([]string, error) {
		var found []string
		if err := tagged.Tags(ctx, repository, "", func(page []string) error {
			found = append(found, page...)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to list tags of %s: %w", repository, err)
		}
		return found, nil
	})
	if err != nil {
		return err
	}
	for i, repository := range repositories {
		for _, tag := range tags[i] {
			fmt.Printf("%s:%s\n", repository, tag)
		}
	}
	return nil
}
