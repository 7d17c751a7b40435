// Package ecr implements the registry login flow: resolve the caller's
// account, assume the admin role, and feed the short-lived registry password
// into the container runtime's login command.
package ecr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacetelescope/caldpctl/internal/run"
)

// LoginOptions parameterizes a registry login.
type LoginOptions struct {
	// RoleName is the admin role assumed to fetch the registry password.
	// An empty value is passed through untouched; see the note in Login.
	RoleName string
	// Region is the registry region, e.g. "us-east-1".
	Region string
	// Env appends KEY=VALUE entries to every spawned tool's environment,
	// carrying envFiles settings (AWS profiles and the like) into the flow.
	Env []string
}

// AccountID resolves the caller's account id from the configured credentials.
func AccountID(ctx context.Context, runner run.Runner, env []string) (string, error) {
	out, err := runner.Output(ctx, run.Command{
		Name: "aws",
		Args: []string{"sts", "get-caller-identity", "--query", "Account", "--output", "text"},
		Env:  env,
	})
	if err != nil {
		return "", fmt.Errorf("resolve account id: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("resolve account id: empty response")
	}
	return out, nil
}

// AdminRoleARN builds the admin role ARN by string interpolation.
func AdminRoleARN(accountID, roleName string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, roleName)
}

// RegistryHost returns the account's regional registry hostname.
func RegistryHost(accountID, region string) string {
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", accountID, region)
}

// Login authenticates the local container client against the account's
// regional registry. The registry password is obtained under the assumed
// admin role and piped to the login command on stdin, so it never appears on
// a command line. Side effect: the container runtime credential store is
// mutated.
//
// NOTE: an empty RoleName is not rejected here. The shell tooling this
// replaces printed usage and carried on with an undefined role, and intent is
// unconfirmed, so the behavior is kept observable rather than silently fixed.
func Login(ctx context.Context, runner run.Runner, logger *slog.Logger, opts LoginOptions) error {
	accountID, err := AccountID(ctx, runner, opts.Env)
	if err != nil {
		return err
	}

	roleARN := AdminRoleARN(accountID, opts.RoleName)
	registry := RegistryHost(accountID, opts.Region)
	logger.Info("logging into registry", "registry", registry, "role", roleARN)

	password, err := runner.Output(ctx, run.Command{
		Name: "awsudo",
		Args: []string{roleARN, "aws", "ecr", "get-login-password", "--region", opts.Region},
		Env:  opts.Env,
	})
	if err != nil {
		return fmt.Errorf("obtain registry password: %w", err)
	}

	err = runner.Run(ctx, run.Command{
		Name:  "docker",
		Args:  []string{"login", "--username", "AWS", "--password-stdin", registry},
		Env:   opts.Env,
		Stdin: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("docker login to %s: %w", registry, err)
	}

	logger.Info("registry login succeeded", "registry", registry)
	return nil
}
