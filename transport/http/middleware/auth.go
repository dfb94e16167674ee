package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"guesthouse/config"
	"guesthouse/infras/jwt"
	"guesthouse/infras/otel"
	"guesthouse/permissions"
	"guesthouse/shared/constant"
	"guesthouse/shared/failure"
	"guesthouse/shared/principal"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const scannerDeviceID = "scanner"

// Auth defines the interface for authentication middleware
type Auth interface {
	Auth(http.Handler) http.Handler
	Scanner(http.Handler) http.Handler
}

// Role defines the interface for role-based access control middleware
type Role interface {
	RBAC(http.Handler) http.Handler
}

// AuthRole combines all middleware interfaces
type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

// Auth resolves the bearer token into a principal. Endpoints marked skip in
// permissions.json pass through untouched.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		path, permission := m.routePermission(request)

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       path,
			"http.method":     request.Method,
		})

		if permission.Skip {
			next.ServeHTTP(writer, request)

			return
		}

		caller, err := m.authenticate(ctx, request)
		if err != nil {
			reject(writer, scope, err)

			return
		}

		admit(next, writer, request, caller)
	})
}

// RBAC checks the principal's role against the endpoint's allowed roles.
// Requires prior authentication via Auth middleware.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		switch {
		case m.permission == nil:
			reject(writer, scope, failure.ForbiddenError)

			return
		case m.permission.Skip:
			next.ServeHTTP(writer, request)

			return
		}

		_, permission := m.routePermission(request)
		caller := principal.FromContext(request.Context())

		if permission.Skip || permission.Allows(caller) {
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"user_role":     caller.Role,
			"allowed_roles": permission.Permissions,
			"reason":        "role_not_allowed",
		})
		reject(writer, scope, failure.ForbiddenError)
	})
}

// Scanner admits either the shared scanner key (X-API-Key or X-API-Token) or a
// bearer token whose role is listed for the endpoint. Neither yields 401.
func (m *authRoleImpl) Scanner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "scanner.middleware")
		defer scope.End()

		if key := scannerKey(request); key != "" {
			scope.SetAttribute("http.source", "scanner")

			if !m.validScannerKey(key) {
				reject(writer, scope, failure.Unauthorized("Invalid scanner key"))

				return
			}

			admit(next, writer, request, principal.Scanner(scannerDeviceID))

			return
		}

		scope.SetAttribute("http.source", "client")

		caller, err := m.authenticate(ctx, request)
		if err != nil {
			reject(writer, scope, err)

			return
		}

		if _, permission := m.routePermission(request); !permission.Allows(caller) {
			scope.SetAttribute("user_role", caller.Role)
			reject(writer, scope, failure.ForbiddenError)

			return
		}

		admit(next, writer, request, caller)
	})
}

func scannerKey(request *http.Request) string {
	if key := request.Header.Get(constant.RequestHeaderAPIKey); key != "" {
		return key
	}

	return request.Header.Get(constant.RequestHeaderAPIToken)
}

func reject(writer http.ResponseWriter, scope otel.Scope, err error) {
	scope.TraceError(err)
	response.WithError(writer, err)
}

func admit(next http.Handler, writer http.ResponseWriter, request *http.Request, caller principal.Principal) {
	next.ServeHTTP(writer, request.WithContext(principal.WithContext(request.Context(), caller)))
}

func (m *authRoleImpl) validScannerKey(key string) bool {
	expected := m.cfg.Attendance.ScannerKey
	if expected == "" {
		log.Warn().Msg("scanner key presented but none is configured")

		return false
	}

	return subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1
}

func (m *authRoleImpl) authenticate(ctx context.Context, request *http.Request) (principal.Principal, error) {
	authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
	if authHeader == "" {
		return principal.Principal{}, failure.Unauthorized("Missing authorization header")
	}

	tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return principal.Principal{}, failure.Unauthorized("Invalid authorization header format")
	}

	claims, err := m.jwtService.ValidateToken(ctx, tokenString, jwt.AccessToken)
	if err != nil {
		var message string

		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			message = "Token has expired"
		case errors.Is(err, jwt.ErrInvalidToken):
			message = "Invalid token"
		case errors.Is(err, jwt.ErrInvalidClaim):
			message = "Invalid token claims"
		default:
			message = "Token validation failed"
		}

		return principal.Principal{}, failure.Unauthorized(message)
	}

	if claims.UserID == "" || claims.Email == "" {
		log.Error().Str("user_id", claims.UserID).Msg("JWT claims missing user id or email")

		return principal.Principal{}, failure.Unauthorized("Invalid token claims")
	}

	return claims.Principal(), nil
}

// routePermission looks up the matched route pattern, e.g. /v1/rooms/{id}.
func (m *authRoleImpl) routePermission(request *http.Request) (string, permissions.Permission) {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil || rctx.Routes == nil || m.permission == nil {
		return request.URL.Path, permissions.Permission{}
	}

	path := rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)

	return path, m.permission.FindPermissions(path, request.Method)
}
