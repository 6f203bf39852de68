// Package middleware provides HTTP middleware for the Tablefolk API.
//
// The middleware package contains reusable middleware components for
// authentication, rate limiting, and request processing.
//
// # Available Middleware
//
// Core middleware components:
//
//   - Auth: JWT token validation and account extraction
//   - RateLimit: Request rate limiting per account/IP
//   - Idempotency: Idempotent request handling for POST/PATCH
//   - RequestID, Logger, Recovery, CORS, Compress: request plumbing
//
// # Authentication
//
// The auth middleware validates JWT tokens and extracts account information.
// After authentication, handlers can access the caller:
//
//	accountID := middleware.GetAccountID(r.Context())
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetAccountID(ctx): Returns the authenticated account ID
//   - GetAccountEmail(ctx): Returns the authenticated account's email
//   - GetClaims(ctx): Returns the full JWT claims
//   - GetRequestID(ctx): Returns the unique request identifier
package middleware
