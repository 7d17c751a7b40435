package ecr

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacetelescope/caldpctl/internal/run"
)

const testAccount = "123456789012"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loginStub(password string) *run.Stub {
	return &run.Stub{
		OutputFunc: func(cmd run.Command) (string, error) {
			switch cmd.Name {
			case "aws":
				return testAccount, nil
			case "awsudo":
				return password, nil
			}
			return "", fmt.Errorf("unexpected command %q", cmd.Name)
		},
	}
}

func TestAccountID(t *testing.T) {
	stub := loginStub("")

	id, err := AccountID(context.Background(), stub, nil)
	require.NoError(t, err)
	assert.Equal(t, testAccount, id)

	require.Len(t, stub.Commands, 1)
	assert.Equal(t, "aws", stub.Commands[0].Name)
	assert.Equal(t, []string{"sts", "get-caller-identity", "--query", "Account", "--output", "text"}, stub.Commands[0].Args)
}

func TestAccountIDEmptyResponse(t *testing.T) {
	stub := &run.Stub{}

	_, err := AccountID(context.Background(), stub, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestAdminRoleARN(t *testing.T) {
	tests := []struct {
		name string
		role string
		want string
	}{
		{name: "named role", role: "caldp-admin", want: "arn:aws:iam::123456789012:role/caldp-admin"},
		// The empty role is passed through unchanged; see the note in Login.
		{name: "empty role", role: "", want: "arn:aws:iam::123456789012:role/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdminRoleARN(testAccount, tc.role))
		})
	}
}

func TestRegistryHost(t *testing.T) {
	assert.Equal(t, "123456789012.dkr.ecr.us-east-1.amazonaws.com", RegistryHost(testAccount, "us-east-1"))
}

func TestLoginPipesPasswordToDocker(t *testing.T) {
	stub := loginStub("registry-secret")

	err := Login(context.Background(), stub, discardLogger(), LoginOptions{
		RoleName: "caldp-admin",
		Region:   "us-east-1",
	})
	require.NoError(t, err)

	awsudo := stub.Named("awsudo")
	require.Len(t, awsudo, 1)
	assert.Equal(t, []string{
		"arn:aws:iam::123456789012:role/caldp-admin",
		"aws", "ecr", "get-login-password", "--region", "us-east-1",
	}, awsudo[0].Args)

	docker := stub.Named("docker")
	require.Len(t, docker, 1)
	assert.Equal(t, []string{
		"login", "--username", "AWS", "--password-stdin",
		"123456789012.dkr.ecr.us-east-1.amazonaws.com",
	}, docker[0].Args)
	// The password travels via stdin, never on the command line.
	assert.Equal(t, []byte("registry-secret"), docker[0].Stdin)
}

func TestLoginPassesToolEnvToEveryCommand(t *testing.T) {
	stub := loginStub("tok")
	env := []string{"AWS_PROFILE=caldp-ops"}

	err := Login(context.Background(), stub, discardLogger(), LoginOptions{
		RoleName: "caldp-admin",
		Region:   "us-east-1",
		Env:      env,
	})
	require.NoError(t, err)

	require.Len(t, stub.Commands, 3)
	for _, cmd := range stub.Commands {
		assert.Equal(t, env, cmd.Env, "command %s", cmd.Name)
	}
}

func TestLoginProceedsWithEmptyRole(t *testing.T) {
	stub := loginStub("tok")

	err := Login(context.Background(), stub, discardLogger(), LoginOptions{Region: "us-east-1"})
	require.NoError(t, err)

	awsudo := stub.Named("awsudo")
	require.Len(t, awsudo, 1)
	assert.Equal(t, "arn:aws:iam::123456789012:role/", awsudo[0].Args[0])
}

func TestLoginPasswordFailureAborts(t *testing.T) {
	stub := &run.Stub{
		OutputFunc: func(cmd run.Command) (string, error) {
			if cmd.Name == "aws" {
				return testAccount, nil
			}
			return "", fmt.Errorf("assume role denied")
		},
	}

	err := Login(context.Background(), stub, discardLogger(), LoginOptions{RoleName: "x", Region: "us-east-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "obtain registry password")
	assert.Empty(t, stub.Named("docker"))
}
