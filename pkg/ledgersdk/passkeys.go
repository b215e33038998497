package ledgersdk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-webauthn/webauthn/protocol"
)

// Ceremony runs the platform side of a WebAuthn exchange: talking to the
// authenticator and producing a signed credential or assertion.
type Ceremony interface {
	CreateCredential(ctx context.Context, opts protocol.PublicKeyCredentialCreationOptions) (*protocol.CredentialCreationResponse, error)
	GetAssertion(ctx context.Context, opts protocol.PublicKeyCredentialRequestOptions) (*protocol.CredentialAssertionResponse, error)
}

// Passkeys implements the passkey registration and sign-in exchanges. Any
// failing step aborts the whole exchange.
type Passkeys struct {
	session  *Session
	ceremony Ceremony
}

// NewPasskeys binds the passkey flows to a session. ceremony may be nil when
// only credential management is needed.
func NewPasskeys(session *Session, ceremony Ceremony) *Passkeys {
	return &Passkeys{session: session, ceremony: ceremony}
}

type passkeyBeginRequest struct {
	Username string `json:"username"`
}

type passkeyRegisterRequest struct {
	Username   string                               `json:"username"`
	Credential *protocol.CredentialCreationResponse `json:"credential"`
	DeviceName string                               `json:"device_name,omitempty"`
}

type passkeyLoginRequest struct {
	Credential *protocol.CredentialAssertionResponse `json:"credential"`
}

// BeginRegistration asks the server for credential creation options for
// username. A response without a challenge is rejected.
func (p *Passkeys) BeginRegistration(ctx context.Context, username string) (*protocol.PublicKeyCredentialCreationOptions, error) {
	var opts protocol.PublicKeyCredentialCreationOptions
	err := p.session.client.Do(ctx, "/auth/webauthn/register/begin/", RequestOptions{
		Method: http.MethodPost,
		Body:   passkeyBeginRequest{Username: username},
	}, &opts)
	if err != nil {
		return nil, err
	}
	if len(opts.Challenge) == 0 {
		return nil, ErrInvalidChallenge
	}
	return &opts, nil
}

// CompleteRegistration submits a created credential for verification.
func (p *Passkeys) CompleteRegistration(
	ctx context.Context,
	username, deviceName string,
	credential *protocol.CredentialCreationResponse,
) (*PasskeyRegistration, error) {
	var out PasskeyRegistration
	err := p.session.client.Do(ctx, "/auth/webauthn/register/complete/", RequestOptions{
		Method: http.MethodPost,
		Body: passkeyRegisterRequest{
			Username:   username,
			Credential: credential,
			DeviceName: deviceName,
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register runs the full registration exchange for the signed-in user.
func (p *Passkeys) Register(ctx context.Context, username, deviceName string) Envelope[*PasskeyRegistration] {
	const op = "passkey_register"

	opts, err := p.BeginRegistration(ctx, username)
	if err != nil {
		p.session.client.logFailure(ctx, op, err)
		return failure[*PasskeyRegistration](err, "Registration failed", false)
	}

	credential, err := p.createCredential(ctx, *opts)
	if err != nil {
		p.session.client.logFailure(ctx, op, err)
		return failure[*PasskeyRegistration](err, "Registration failed", false)
	}

	reg, err := p.CompleteRegistration(ctx, username, deviceName, credential)
	if err != nil {
		p.session.client.logFailure(ctx, op, err)
		return failure[*PasskeyRegistration](err, "Registration failed", false)
	}
	return Ok(reg)
}

// BeginAuthentication asks the server for an assertion challenge. The
// server ties the challenge to a cookie, which the client's jar carries to
// the completion step.
func (p *Passkeys) BeginAuthentication(ctx context.Context) (*protocol.PublicKeyCredentialRequestOptions, error) {
	var opts protocol.PublicKeyCredentialRequestOptions
	err := p.session.client.Do(ctx, "/auth/webauthn/login/begin/", RequestOptions{
		Method:        http.MethodPost,
		SkipAuthGuard: true,
	}, &opts)
	if err != nil {
		return nil, err
	}
	if len(opts.Challenge) == 0 {
		return nil, ErrInvalidChallenge
	}
	return &opts, nil
}

// CompleteAuthentication submits an assertion and returns the issued tokens.
// It does not touch the session.
func (p *Passkeys) CompleteAuthentication(ctx context.Context, assertion *protocol.CredentialAssertionResponse) (*TokenPair, error) {
	var pair TokenPair
	err := p.session.client.Do(ctx, "/auth/webauthn/login/complete/", RequestOptions{
		Method:        http.MethodPost,
		Body:          passkeyLoginRequest{Credential: assertion},
		SkipAuthGuard: true,
	}, &pair)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Authenticate runs the full sign-in exchange and loads the user with the
// issued access token.
func (p *Passkeys) Authenticate(ctx context.Context) Envelope[*User] {
	const op = "passkey_authenticate"

	opts, err := p.BeginAuthentication(ctx)
	if err != nil {
		p.session.client.logFailure(ctx, op, err)
		return failure[*User](err, "Authentication failed", false)
	}

	assertion, err := p.getAssertion(ctx, *opts)
	if err != nil {
		p.session.client.logFailure(ctx, op, err)
		return failure[*User](err, "Authentication failed", false)
	}

	pair, err := p.CompleteAuthentication(ctx, assertion)
	if err != nil {
		p.session.client.logFailure(ctx, op, err)
		return failure[*User](err, "Authentication failed", false)
	}

	return p.session.establish(ctx, op, *pair)
}

// List returns the signed-in user's passkeys.
func (p *Passkeys) List(ctx context.Context) Envelope[[]WebAuthnCredential] {
	return call[[]WebAuthnCredential](ctx, p.session.client, "passkey_list",
		"/auth/webauthn/credentials/", RequestOptions{}, "Failed to list credentials", false)
}

// Delete removes one of the signed-in user's passkeys.
func (p *Passkeys) Delete(ctx context.Context, id int64) Envelope[struct{}] {
	return call[struct{}](ctx, p.session.client, "passkey_delete",
		fmt.Sprintf("/auth/webauthn/credentials/%d/", id),
		RequestOptions{Method: http.MethodDelete}, "Failed to delete credential", false)
}

func (p *Passkeys) createCredential(ctx context.Context, opts protocol.PublicKeyCredentialCreationOptions) (*protocol.CredentialCreationResponse, error) {
	if p.ceremony == nil {
		return nil, errNoCeremony
	}
	cred, err := p.ceremony.CreateCredential(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("credential creation: %w", err)
	}
	if cred == nil {
		return nil, fmt.Errorf("credential creation: %w", errEmptyCeremonyResult)
	}
	return cred, nil
}

func (p *Passkeys) getAssertion(ctx context.Context, opts protocol.PublicKeyCredentialRequestOptions) (*protocol.CredentialAssertionResponse, error) {
	if p.ceremony == nil {
		return nil, errNoCeremony
	}
	assertion, err := p.ceremony.GetAssertion(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("credential assertion: %w", err)
	}
	if assertion == nil {
		return nil, fmt.Errorf("credential assertion: %w", errEmptyCeremonyResult)
	}
	return assertion, nil
}
