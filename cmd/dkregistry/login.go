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
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkregistry/dkregistry-go/registry/remote"
	"github.com/dkregistry/dkregistry-go/registry/remote/auth"
)

type loginOptions struct {
	clientOptions
	registry      string
	username      string
	password      string
	passwordStdin bool
}

func loginCmd() *cobra.Command {
	var opts loginOptions
	cmd := &cobra.Command{
		Use:   "login <registry>",
		Short: "Log in to a remote registry",
		Long: `Log in to a remote registry

Example - Log in with a username and password read from stdin:
  dkregistry login -u myuser --password-stdin localhost:5000
Example - Log in with an identity token:
  dkregistry login -p mytoken docker.io
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.registry = args[0]
			return runLogin(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "registry username")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "registry password or identity token")
	cmd.Flags().BoolVar(&opts.passwordStdin, "password-stdin", false, "read password or identity token from stdin")
	opts.installFlags(cmd)
	return cmd
}

func runLogin(ctx context.Context, opts loginOptions) error {
	if opts.passwordStdin {
		password, err := readPassword(os.Stdin)
		if err != nil {
			return err
		}
		opts.password = password
	} else if opts.password != "" {
		fmt.Fprintln(os.Stderr, "WARNING! Using --password via the CLI is insecure. Use --password-stdin.")
	}

	var cred auth.Credential
	if opts.username == "" {
		cred = auth.Credential{RefreshToken: opts.password}
	} else {
		cred = auth.Credential{
			Username: opts.username,
			Password: opts.password,
		}
	}
	if cred == auth.EmptyCredential {
		return errors.New("missing username or password")
	}

	store, err := opts.credentialStore()
	if err != nil {
		return err
	}
	client, err := opts.newClient(opts.registry, store)
	if err != nil {
		return err
	}
	if err := remote.Login(ctx, store, client, cred); err != nil {
		return err
	}
	fmt.Println("Login Succeeded")
	return nil
}

// readPassword reads a password from r, trimming the trailing newline a
// terminal or a pipe appends.
func readPassword(r io.Reader) (string, error) {
	password, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	trimmed := strings.TrimSuffix(string(password), "\n")
	return strings.TrimSuffix(trimmed, "\r"), nil
}
