package secret

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type stubSSM struct {
	value string
	err   error
	got   *ssm.GetParameterInput
}

func (s *stubSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	s.got = params
	if s.err != nil {
		return nil, s.err
	}
	return &ssm.GetParameterOutput{
		Parameter: &types.Parameter{Value: aws.String(s.value)},
	}, nil
}

func TestSSMResolver(t *testing.T) {
	stub := &stubSSM{value: "s3cret"}
	r := NewSSMResolver(stub)

	got, err := r.GetSecret(context.Background(), "/riskregister/oauth-client-secret")
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("value = %q", got)
	}
	if stub.got == nil || !aws.ToBool(stub.got.WithDecryption) {
		t.Errorf("expected decryption to be requested: %+v", stub.got)
	}
}

func TestSSMResolverError(t *testing.T) {
	r := NewSSMResolver(&stubSSM{err: errors.New("access denied")})
	if _, err := r.GetSecret(context.Background(), "/riskregister/oauth-client-secret"); err == nil {
		t.Error("expected error from SSM failure")
	}
}

func TestEnvResolver(t *testing.T) {
	t.Setenv("OAUTH_CLIENT_SECRET", "from-env")

	r := NewEnvResolver()
	got, err := r.GetSecret(context.Background(), "/riskregister/oauth-client-secret")
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if got != "from-env" {
		t.Errorf("value = %q", got)
	}
}

func TestEnvResolverMissing(t *testing.T) {
	r := NewEnvResolver()
	if _, err := r.GetSecret(context.Background(), "/riskregister/definitely-not-set"); err == nil {
		t.Error("expected error for unset variable")
	}
}
