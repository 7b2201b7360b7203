package leadexec

import (
	"context"
	"fmt"

	"lead-gateway/internal/common/config"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderAPIKey        = "api-key"
)

// Credential is the header that authorizes one insert call.
type Credential struct {
	Header string
	Value  string
}

// CredentialStrategy acquires a credential for a single submission. Nothing
// is cached between calls.
type CredentialStrategy interface {
	Acquire(ctx context.Context) (*Credential, error)
	Name() string
}

// StaticKey sends a pre-shared key in the api-key header.
type StaticKey struct {
	Key string
}

func (s StaticKey) Acquire(context.Context) (*Credential, error) {
	return &Credential{Header: HeaderAPIKey, Value: s.Key}, nil
}

func (StaticKey) Name() string { return config.StrategyStatic }

// TokenRequester is the part of Client used by OAuthExchange.
type TokenRequester interface {
	RequestToken(ctx context.Context, clientID, clientSecret string) (string, error)
}

// OAuthExchange runs the client-credentials exchange on every call and sends
// the token as a bearer header.
type OAuthExchange struct {
	ClientID     string
	ClientSecret string
	Tokens       TokenRequester
}

func (o OAuthExchange) Acquire(ctx context.Context) (*Credential, error) {
	token, err := o.Tokens.RequestToken(ctx, o.ClientID, o.ClientSecret)
	if err != nil {
		return nil, err
	}
	return &Credential{Header: HeaderAuthorization, Value: "Bearer " + token}, nil
}

func (OAuthExchange) Name() string { return config.StrategyOAuth }

// NewCredentialStrategy builds the strategy selected in configuration.
func NewCredentialStrategy(cfg config.CredentialsConfig, tokens TokenRequester) (CredentialStrategy, error) {
	switch cfg.Strategy {
	case config.StrategyStatic:
		return StaticKey{Key: cfg.APIKey}, nil
	case config.StrategyOAuth:
		return OAuthExchange{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Tokens:       tokens,
		}, nil
	default:
		return nil, fmt.Errorf("unknown credential strategy %q", cfg.Strategy)
	}
}
