package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/kms-secrets/pkg/config"
	"github.com/Checker-Finance/kms-secrets/pkg/secrets"
)

type stubKMS map[string]string

func (s stubKMS) Decrypt(_ context.Context, in *kms.DecryptInput, _ ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	pt, ok := s[string(in.CiphertextBlob)]
	if !ok {
		return nil, fmt.Errorf("InvalidCiphertextException")
	}
	return &kms.DecryptOutput{Plaintext: []byte(pt)}, nil
}

// recordingKMS keeps the inputs it was called with.
type recordingKMS struct {
	stubKMS
	mu     sync.Mutex
	inputs []*kms.DecryptInput
}

func (r *recordingKMS) Decrypt(ctx context.Context, in *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error) {
	r.mu.Lock()
	r.inputs = append(r.inputs, in)
	r.mu.Unlock()
	return r.stubKMS.Decrypt(ctx, in, optFns...)
}

type stubProvider map[string]string

func (s stubProvider) GetSecret(context.Context, string) (map[string]string, error) {
	return s, nil
}

func newTestApp(t *testing.T, plaintexts stubKMS, bundle stubProvider) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := &config.Config{EnvPrefix: "KMSCLI_", AWSRegion: "us-east-2"}
	app := &App{
		Config: cfg,
		Logger: zap.NewNop(),
		Out:    out,
		NewDecrypter: func(context.Context, string) (secrets.DecryptAPI, error) {
			return plaintexts, nil
		},
		NewProvider: func(context.Context, string) (secrets.Provider, error) {
			return bundle, nil
		},
	}
	return app, out
}

func run(t *testing.T, app *App, args ...string) error {
	t.Helper()
	root := NewRootCommand(app, "test")
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestGetCommand_MasksByDefault(t *testing.T) {
	t.Setenv("KMSCLI_TOKEN", "ct-token")
	app, out := newTestApp(t, stubKMS{"ct-token": "abcdefgh"}, nil)

	require.NoError(t, run(t, app, "get", "token"))
	assert.JSONEq(t, `"****efgh"`, out.String())
}

func TestGetCommand_RevealJSONPath(t *testing.T) {
	t.Setenv("KMSCLI_DB", "ct-db")
	app, out := newTestApp(t, stubKMS{"ct-db": `{"password":"hunter2"}`}, nil)

	require.NoError(t, run(t, app, "get", "db.password", "--json-parse", "db", "--reveal"))
	assert.JSONEq(t, `"hunter2"`, out.String())
}

func TestGetCommand_Default(t *testing.T) {
	app, out := newTestApp(t, stubKMS{}, nil)

	require.NoError(t, run(t, app, "get", "missing", "--default", "none", "--reveal"))
	assert.JSONEq(t, `"none"`, out.String())

	out.Reset()
	require.NoError(t, run(t, app, "get", "missing"))
	assert.JSONEq(t, `null`, out.String())
}

func TestGetCommand_FromBundle(t *testing.T) {
	app, out := newTestApp(t, stubKMS{"ct-api": "key-1234"}, stubProvider{"api": "ct-api"})

	require.NoError(t, run(t, app, "get", "api", "--bundle", "prod/app", "--reveal"))
	assert.JSONEq(t, `"key-1234"`, out.String())
}

func TestGetCommand_DecryptFailure(t *testing.T) {
	t.Setenv("KMSCLI_BAD", "ct-unknown")
	app, _ := newTestApp(t, stubKMS{}, nil)

	err := run(t, app, "get", "bad")
	require.Error(t, err)
	var decErr *secrets.DecryptError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "bad", decErr.Namespace)
}

func TestQueryCommand(t *testing.T) {
	t.Setenv("KMSCLI_CFG", "ct-cfg")
	app, out := newTestApp(t, stubKMS{"ct-cfg": `{"hosts":["a","b","c"]}`}, nil)

	require.NoError(t, run(t, app, "query", ".cfg.hosts | length", "--json-parse", "cfg", "--reveal"))
	assert.JSONEq(t, `3`, out.String())
}

func TestListCommand(t *testing.T) {
	t.Setenv("KMSCLI_B", "ct-b")
	t.Setenv("KMSCLI_A", "ct-a")
	app, out := newTestApp(t, stubKMS{"ct-a": "1", "ct-b": "2"}, nil)

	require.NoError(t, run(t, app, "list"))
	assert.Equal(t, "a\nb\n", out.String())
}

func TestGetCommand_EncryptionContextFlag(t *testing.T) {
	t.Setenv("KMSCLI_TOKEN", "ct-token")
	app, out := newTestApp(t, nil, nil)
	client := &recordingKMS{stubKMS: stubKMS{"ct-token": "abcdefgh"}}
	app.NewDecrypter = func(context.Context, string) (secrets.DecryptAPI, error) {
		return client, nil
	}

	require.NoError(t, run(t, app, "get", "token", "--encryption-context", "LambdaFunctionName=fn,stage=prod"))
	assert.JSONEq(t, `"****efgh"`, out.String())

	require.Len(t, client.inputs, 1)
	assert.Equal(t, map[string]string{"LambdaFunctionName": "fn", "stage": "prod"}, client.inputs[0].EncryptionContext)
}

func TestGetCommand_EncryptionContextFromConfig(t *testing.T) {
	t.Setenv("KMSCLI_TOKEN", "ct-token")
	app, _ := newTestApp(t, nil, nil)
	app.Config.EncryptionContext = map[string]string{"LambdaFunctionName": "fn"}
	client := &recordingKMS{stubKMS: stubKMS{"ct-token": "abcdefgh"}}
	app.NewDecrypter = func(context.Context, string) (secrets.DecryptAPI, error) {
		return client, nil
	}

	require.NoError(t, run(t, app, "get", "token"))
	require.Len(t, client.inputs, 1)
	assert.Equal(t, map[string]string{"LambdaFunctionName": "fn"}, client.inputs[0].EncryptionContext)
}

func TestGetCommand_RevealFromConfig(t *testing.T) {
	t.Setenv("KMSCLI_TOKEN", "ct-token")
	app, out := newTestApp(t, stubKMS{"ct-token": "abcdefgh"}, nil)
	app.Config.Reveal = true

	require.NoError(t, run(t, app, "get", "token"))
	assert.JSONEq(t, `"abcdefgh"`, out.String())
}
