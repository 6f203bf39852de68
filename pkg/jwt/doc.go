// Package jwt implements RS256-signed JSON Web Tokens for the Tablefolk API.
//
// The Service signs and validates compact-serialized tokens with RSA keys
// loaded from PEM files. Access tokens are short-lived; refresh tokens are
// opaque strings managed by the token service, not JWTs.
//
// # Usage
//
//	svc, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    PublicKeyPath:  "./keys/public.pem",
//	    Issuer:         "api.tablefolk.app",
//	    ExpirationMins: 15,
//	})
//
//	token, err := svc.Sign(jwt.Claims{UserID: account.ID, Email: account.Email})
//	claims, err := svc.Validate(token)
//
// A validation-only Service can be built from just the public key, which is
// how read-side deployments verify tokens without holding signing material.
package jwt
