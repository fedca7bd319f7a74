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
	"encoding/json"
	"fmt"
	"os"

	"github.com/distribution/reference"
	"github.com/spf13/cobra"

	"github.com/dkregistry/dkregistry-go/registry/remote/auth"
)

type manifestOptions struct {
	clientOptions
	reference  string
	descriptor bool
}

func manifestCmd() *cobra.Command {
	var opts manifestOptions
	cmd := &cobra.Command{
		Use:   "manifest <name>[:<tag>|@<digest>]",
		Short: "Fetch the manifest of a repository reference",
		Long: `Fetch the manifest of a repository reference

Example - Fetch a manifest by tag:
  dkregistry manifest localhost:5000/myrepo:v1
Example - Fetch a manifest by digest:
  dkregistry manifest localhost:5000/myrepo@sha256:9d3dd28d14fb3d9b84b9e90cc0dca82475bf119c8232f0ba1b73af34c2a1fe88
Example - Print the descriptor instead of the content:
  dkregistry manifest --descriptor localhost:5000/myrepo:v1
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.reference = args[0]
			return runManifest(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.descriptor, "descriptor", false, "print the manifest descriptor instead of the content")
	opts.installFlags(cmd)
	return cmd
}

func runManifest(ctx context.Context, opts manifestOptions) error {
	named, err := reference.ParseNormalizedNamed(opts.reference)
	if err != nil {
		return fmt.Errorf("invalid reference %s: %w", opts.reference, err)
	}
	named = reference.TagNameOnly(named)
	registry := reference.Domain(named)
	repository := reference.Path(named)
	// A reference can carry both a tag and a digest. The digest pins the
	// content, so it wins.
	var target string
	if canonical, ok := named.(reference.Canonical); ok {
		target = canonical.Digest().String()
	} else if tagged, ok := named.(reference.Tagged); ok {
		target = tagged.Tag()
	} else {
		return fmt.Errorf("reference %s has no tag or digest", opts.reference)
	}

	store, err := opts.credentialStore()
	if err != nil {
		return err
	}
	client, err := opts.newClient(registry, store)
	if err != nil {
		return err
	}
	authenticated, err := authenticate(ctx, client, []string{
		auth.ScopeRepository(repository, auth.ActionPull),
	})
	if err != nil {
		return err
	}
	desc, content, err := authenticated.FetchManifest(ctx, repository, target)
	if err != nil {
		return err
	}
	if opts.descriptor {
		encoded, err := json.Marshal(desc)
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}
	_, err = os.Stdout.Write(content)
	return err
}
