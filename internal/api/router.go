package api

import (
	"net/http"

	"github.com/nitpy-cse/assetreg/internal/db"
	"github.com/nitpy-cse/assetreg/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(database *db.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: database, JWTSecret: jwtSecret}
	assetsHandler := &AssetsHandler{DB: database}
	usersHandler := &UsersHandler{DB: database}
	logsHandler := &LogsHandler{DB: database}

	authMW := AuthMiddleware(jwtSecret, database)
	requireHOD := RequireRole(model.RoleHOD)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Assets (all roles).
	mux.Handle("GET /api/assets", authMW(http.HandlerFunc(assetsHandler.List)))
	mux.Handle("POST /api/assets", authMW(http.HandlerFunc(assetsHandler.Create)))
	mux.Handle("GET /api/assets/{id}", authMW(http.HandlerFunc(assetsHandler.Get)))
	mux.Handle("PUT /api/assets/{id}", authMW(http.HandlerFunc(assetsHandler.Update)))
	mux.Handle("DELETE /api/assets/{id}", authMW(http.HandlerFunc(assetsHandler.Delete)))

	// Users (HOD only).
	mux.Handle("GET /api/users", authMW(requireHOD(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireHOD(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireHOD(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireHOD(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/reset-password", authMW(requireHOD(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireHOD(http.HandlerFunc(usersHandler.Delete))))

	// Login logs (HOD only).
	mux.Handle("GET /api/logs", authMW(requireHOD(http.HandlerFunc(logsHandler.List))))

	return mux
}
