// Package authz implements the authorization protocol: password login with
// token issuance, and per-request token verification with the dual check
// against the token's embedded scopes and the live permission set.
package authz

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rbac-service/internal/apperr"
	"rbac-service/internal/model"
	"rbac-service/internal/store"
	"rbac-service/pkg/jwtutil"
	"rbac-service/pkg/logger"
)

// Identity is the authenticated-request context produced by Authenticate:
// the resolved user and the application/tenant pair it was resolved in.
type Identity struct {
	User       *model.User
	AppSlug    string
	TenantSlug string
	// Scopes are the permission names embedded in the presented token.
	Scopes map[string]struct{}
}

// Authenticator verifies credentials and tokens against a fixed
// application/tenant anchor. The default deployment anchors to the
// management pair; a multi-anchor deployment constructs one Authenticator
// per pair.
type Authenticator struct {
	store    *store.Store
	jwt      *jwtutil.JWTUtil
	verifier CredentialVerifier
	appSlug  string
	tnSlug   string
}

// New creates an Authenticator anchored to the given application and tenant.
func New(st *store.Store, jwt *jwtutil.JWTUtil, verifier CredentialVerifier, appSlug, tnSlug string) *Authenticator {
	return &Authenticator{
		store:    st,
		jwt:      jwt,
		verifier: verifier,
		appSlug:  appSlug,
		tnSlug:   tnSlug,
	}
}

// authFailure logs the detailed reason server-side and returns the opaque
// error for the caller. The trace id ties the two together.
func authFailure(ctx context.Context, authenticated bool, reason string, fields ...zap.Field) error {
	traceID := uuid.New().String()
	fields = append(fields, zap.String("trace_id", traceID))
	logger.FromContext(ctx).Warn(reason, fields...)
	if authenticated {
		return apperr.NoPermission(traceID)
	}
	return apperr.InvalidCredentials(traceID)
}

// Login verifies a username/password pair and issues a signed token. When
// the caller requests specific scopes they must be a subset of the user's
// live permission set; with no requested scopes the token is granted exactly
// the full live set computed at issuance time.
func (a *Authenticator) Login(ctx context.Context, username, password string, requestedScopes []string) (string, []string, error) {
	if username == "" {
		return "", nil, authFailure(ctx, false, "no username in login request")
	}

	user, err := a.store.GetUserWithGrants(ctx, a.appSlug, a.tnSlug, username)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return "", nil, authFailure(ctx, false, "no such user",
				zap.String("user", username))
		}
		return "", nil, err
	}

	if user.Suspended {
		return "", nil, authFailure(ctx, false, "suspended user attempted to login",
			zap.String("user", username))
	}
	if user.Password == nil || !a.verifier.Verify(password, *user.Password) {
		return "", nil, authFailure(ctx, false, "incorrect password",
			zap.String("user", username))
	}

	livePerms := user.PermissionNames()

	var granted []string
	if len(requestedScopes) == 0 {
		granted = setToSlice(livePerms)
	} else {
		if missing := missingFrom(requestedScopes, livePerms); len(missing) > 0 {
			return "", nil, authFailure(ctx, false, "requested scopes exceed user permissions",
				zap.String("user", username),
				zap.Strings("missing", missing))
		}
		granted = setToSlice(sliceToSet(requestedScopes))
	}

	token, err := a.jwt.GenerateToken(user.Name, granted)
	if err != nil {
		return "", nil, err
	}
	return token, granted, nil
}

// Authenticate verifies a presented token and authorizes it against the
// required permissions. Authorization passes only when the required set is a
// subset of both the token's embedded scopes and the user's live permission
// set, so revoking a grant takes effect on the next request even for an
// unexpired token: a token can narrow authority, never restore it.
func (a *Authenticator) Authenticate(ctx context.Context, token string, required []string) (*Identity, error) {
	if token == "" {
		return nil, authFailure(ctx, false, "no token in request")
	}

	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil, authFailure(ctx, false, "invalid token in request", zap.Error(err))
	}
	if claims.Subject == "" {
		return nil, authFailure(ctx, false, "no username in token")
	}
	tokenScopes := sliceToSet(claims.Scopes)
	if len(tokenScopes) == 0 {
		return nil, authFailure(ctx, true, "no permissions in token",
			zap.String("user", claims.Subject))
	}

	user, err := a.store.GetUserWithGrants(ctx, a.appSlug, a.tnSlug, claims.Subject)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return nil, authFailure(ctx, false, "token subject not found",
				zap.String("user", claims.Subject))
		}
		return nil, err
	}
	if user.Suspended {
		return nil, authFailure(ctx, false, "token subject is suspended",
			zap.String("user", claims.Subject))
	}

	livePerms := user.PermissionNames()

	if missing := missingFrom(required, tokenScopes); len(missing) > 0 {
		return nil, authFailure(ctx, true, "missing permissions in token",
			zap.String("user", claims.Subject),
			zap.Strings("missing", missing))
	}
	if missing := missingFrom(required, livePerms); len(missing) > 0 {
		return nil, authFailure(ctx, true, "missing permissions in database",
			zap.String("user", claims.Subject),
			zap.Strings("missing", missing))
	}

	return &Identity{
		User:       user,
		AppSlug:    a.appSlug,
		TenantSlug: a.tnSlug,
		Scopes:     tokenScopes,
	}, nil
}

func sliceToSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func setToSlice(set map[string]struct{}) []string {
	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	return items
}

// missingFrom returns the required names absent from the set.
func missingFrom(required []string, set map[string]struct{}) []string {
	var missing []string
	for _, name := range required {
		if _, ok := set[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
