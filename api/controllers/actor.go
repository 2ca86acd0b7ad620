package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/zahabi-gold/zahabi-backend/api/middleware"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
)

// requestUser pulls the authenticated user id out of the request context.
func requestUser(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// requestAccount pulls the caller's wallet account id. Staff tokens carry no
// account, so wallet routes reject them here.
func requestAccount(r *http.Request) (uuid.UUID, error) {
	raw := middleware.AccountIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no wallet account for this user")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid account id")
	}
	return id, nil
}

func requestRole(r *http.Request) enums.UserRole {
	return enums.UserRole(middleware.RoleFromContext(r.Context()))
}
