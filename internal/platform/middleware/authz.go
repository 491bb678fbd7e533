// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/librarium/internal/platform/apperr"
	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/platform/ctxutil"
	"github.com/taibuivan/librarium/internal/platform/respond"
	"github.com/taibuivan/librarium/internal/platform/sec"
)

// TokenVerifier checks admin tokens. [*sec.TokenService] satisfies it.
type TokenVerifier interface {
	CanVerify() bool
	VerifyToken(tokenString string) (*sec.AdminClaims, error)
}

// RequireAdmin guards the admin routes with a bearer token carrying the admin
// role. When verifier has no public key the routes stay open, which suits a
// library served on localhost only.
func RequireAdmin(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !verifier.CanVerify() {
				next.ServeHTTP(writer, request)
				return
			}

			// 1. Format validation
			authHeader := request.Header.Get(constants.HeaderAuthorization)
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Admin token required"))
				return
			}

			// 2. Token verification
			claims, err := verifier.VerifyToken(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// 3. Role check
			if claims.Role != constants.AdminRole {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request.WithContext(ctxutil.WithAdmin(request.Context(), claims)))
		})
	}
}
