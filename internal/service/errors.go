package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrHandleTaken        = errors.New("handle already taken")
	ErrInvalidHandle      = errors.New("invalid handle")
	ErrAccountNotFound    = errors.New("account not found")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
)

// ===== Token Errors =====
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)

// ===== Federated Sign-in Errors =====
var (
	ErrInvalidIDToken   = errors.New("invalid ID token")
	ErrProviderError    = errors.New("identity provider error")
	ErrEmailNotVerified = errors.New("email not verified by provider")
)

// ===== Relationship Errors =====
var (
	ErrCannotRelateSelf      = errors.New("cannot send a friend request to yourself")
	ErrRequestAlreadySent    = errors.New("friend request already sent")
	ErrAlreadyFriends        = errors.New("already friends")
	ErrNoPendingRequest      = errors.New("no pending friend request")
	ErrBlockedByAccount      = errors.New("this account is not accepting requests")
	ErrAccountBlocked        = errors.New("you have blocked this account")
	ErrNotBlocked            = errors.New("account not blocked")
	ErrRelationshipNotFound  = errors.New("relationship not found")
	ErrCannotBlockSelf       = errors.New("cannot block yourself")
	ErrAlreadyBlocked        = errors.New("account already blocked")
)

// ===== Notification Errors =====
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("notification belongs to another account")
)

// ===== Discussion Errors =====
var (
	ErrDiscussionNotFound    = errors.New("discussion not found")
	ErrNotParticipant        = errors.New("not a participant of this discussion")
	ErrNotDiscussionCreator  = errors.New("only the discussion creator can do this")
	ErrMessageNotFound       = errors.New("message not found")
	ErrNotMessageAuthor      = errors.New("not the author of this message")
	ErrMessageDeleted        = errors.New("message has been deleted")
	ErrParticipantLimit      = errors.New("discussion participant limit reached")
	ErrAlreadyParticipant    = errors.New("already a participant")
	ErrCreatorCannotLeave    = errors.New("the creator cannot leave the discussion")
)

// ===== Session Errors =====
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrNotSessionHost      = errors.New("not the session host")
	ErrSessionFull         = errors.New("session is full")
	ErrAlreadyJoined       = errors.New("already joined this session")
	ErrNotSessionMember    = errors.New("not a member of this session")
	ErrSessionNotJoinable  = errors.New("session is not accepting players")
	ErrSessionInPast       = errors.New("session must be scheduled in the future")
	ErrHostCannotLeave     = errors.New("the host cannot leave the session")
	ErrSessionNotVisible   = errors.New("session not found")
	ErrBadStatusChange     = errors.New("invalid session status change")
)

// ===== Shop and Space Renter Errors =====
var (
	ErrShopNotFound       = errors.New("shop not found")
	ErrShopExists         = errors.New("account already owns a shop")
	ErrNotShopOwner       = errors.New("not the shop owner")
	ErrListingNotFound    = errors.New("listing not found")
	ErrListingExists      = errors.New("account already has a listing")
	ErrNotListingOwner    = errors.New("not the listing owner")
	ErrRoleNotPermitted   = errors.New("account role does not permit this")
)

// ===== Geocoding Errors =====
var (
	ErrGeocodeUnavailable = errors.New("geocoding service unavailable")
	ErrNoGeocodeResults   = errors.New("no results for this query")
)

// ===== Push Notification Errors =====
var (
	ErrPushDisabled       = errors.New("push notifications are disabled")
	ErrNoDeviceTokens     = errors.New("no device tokens found for account")
	ErrDeviceNotFound     = errors.New("device not found")
	ErrNotDeviceOwner     = errors.New("device belongs to another account")
	ErrDeviceLimitReached = errors.New("maximum number of devices reached")
)
