// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity verification, session tokens and ID
generation.

# Identity Provider

Sessions are only issued for identities an IdentityProvider vouches for.
HMACProvider accepts HS256 assertions signed by the provider with a shared
secret; the uid is the subject claim:

	provider, err := auth.NewHMACProvider(cfg.ProviderSecret, cfg.ProviderIssuer)
	id, err := provider.VerifyIdentity(ctx, assertion)

# Session Tokens

Issuer signs HS256 JWTs for an identity returned by the authentication
provider:

	issuer, err := auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	token, err := issuer.Issue(models.Identity{UID: "alice", DisplayName: "Alice"})
	id, err := issuer.Verify(token)

The uid travels as the subject claim and the display name as "name". Every
token carries a random UUID jti so it can be signed out individually:

	err := issuer.Revoke(ctx, token)

Revocations are kept until the token would have expired anyway. With a
store attached they survive restarts:

	err := issuer.UseStore(ctx, st)

# ID Generation

Random hex IDs for records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
