/*
Package ledgersdk provides a client SDK for the ledger personal-finance API.

# Overview

The package is organized around a Client, which sends requests, and a
Session, which owns the signed-in user:

  - Client: base URL, JSON encoding, bearer token injection and error parsing
  - TokenStore: where the access and refresh tokens live
  - AuthGuard: ends the session once when the server rejects it
  - Session: login, registration, logout, user lookup and token refresh
  - Passkeys: WebAuthn registration and sign-in on top of a Session

Create a client and a session:

	client := ledgersdk.NewClient("https://ledger.example.com/api/v1",
		ledgersdk.WithTokenStore(store),
		ledgersdk.WithNavigator(nav),
	)
	session := ledgersdk.NewSession(client)

	res := session.Login(ctx, "alice", "secret")
	if !res.Success {
		fmt.Println(res.Error)
	}

# Envelopes

Every data-access operation above Client.Do returns an Envelope instead of an
error. Success is true with Data set, or false with Error set. Errors holds
per-field validation messages for create and update calls:

	res := client.Accounts().Create(ctx, in)
	if !res.Success {
		for field, msgs := range res.Errors {
			fmt.Println(field, msgs)
		}
	}

# Session expiry

A 401 or 403 on any authenticated request trips the AuthGuard. The guard
clears the token store and the session user, then navigates to LoginRoute
with replace set. Concurrent failures collapse into a single redirect; the
guard re-arms after DefaultGuardReset. The failing call still receives the
server's *APIError.

# Errors

Client.Do returns *APIError for non-2xx responses and *RequestError when the
request could not be sent or the response could not be read. Envelopes show
the server's message for the former and a fixed per-operation message for
the latter; the cause is logged.

Credential-entry endpoints (login, registration, refresh, logout and passkey
sign-in) opt out of the guard with RequestOptions.SkipAuthGuard, since a 401
there means wrong credentials.

# Authentication state

Session.IsAuthenticated is true only while a user record is loaded. Right
after tokens are stored and before the user fetch completes it reads false.
Session.FetchUser fails closed: any failure clears both tokens and the user.

# Passkeys

The platform ceremony is supplied by the caller as a Ceremony. The SDK
validates that the server returned a challenge before invoking it:

	pk := ledgersdk.NewPasskeys(session, ceremony)
	res := pk.Authenticate(ctx)
*/
package ledgersdk
