package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zahabi-gold/zahabi-backend/api/middleware"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
	pkgerrors "github.com/zahabi-gold/zahabi-backend/pkg/errors"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
)

func insufficientGold() error {
	return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient funds for gold_sale")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	return addRouteParams(req, key, value)
}

func addRouteParams(req *http.Request, pairs ...string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		routeCtx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

// asCustomer seeds the context the auth middleware would build for a wallet
// owner.
func asCustomer(req *http.Request, userID, accountID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, enums.UserRoleCustomer.String())
	ctx = middleware.WithAccountID(ctx, accountID.String())
	return req.WithContext(ctx)
}

func asStaff(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role.String())
	return req.WithContext(ctx)
}

func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d got %d", want, got)
	}
}
