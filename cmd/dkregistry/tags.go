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

	"github.com/distribution/reference"
	"github.com/spf13/cobra"

	"github.com/dkregistry/dkregistry-go/registry/remote/auth"
)

type tagsOptions struct {
	clientOptions
	reference string
	last      string
	pageSize  int
}

func tagsCmd() *cobra.Command {
	var opts tagsOptions
	cmd := &cobra.Command{
		Use:   "tags <name>",
		Short: "List the tags of a repository",
		Long: `List the tags of a repository

Example - List the tags of a local repository:
  dkregistry tags localhost:5000/myrepo
Example - List the tags of a Docker Hub repository:
  dkregistry tags ubuntu
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.reference = args[0]
			return runTags(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.last, "last", "", "start listing after this tag")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "number of tags to request per page")
	opts.installFlags(cmd)
	return cmd
}

func runTags(ctx context.Context, opts tagsOptions) error {
	named, err := reference.ParseNormalizedNamed(opts.reference)
	if err != nil {
		return fmt.Errorf("invalid repository name %s: %w", opts.reference, err)
	}
	registry := reference.Domain(named)
	repository := reference.Path(named)

	store, err := opts.credentialStore()
	if err != nil {
		return err
	}
	client, err := opts.newClient(registry, store)
	if err != nil {
		return err
	}
	client.TagListPageSize = opts.pageSize

	authenticated, err := authenticate(ctx, client, []string{
		auth.ScopeRepository(repository, auth.ActionPull),
	})
	if err != nil {
		return err
	}
	return authenticated.Tags(ctx, repository, opts.last, func(tags []string) error {
		for _, tag := range tags {
			fmt.Println(tag)
		}
		return nil
	})
}
