package router

import (
	"net/http"
	"time"

	"github.com/avolkov/filebox-server/internal/api/http/handler"
	"github.com/avolkov/filebox-server/internal/api/http/middleware"
	"github.com/avolkov/filebox-server/internal/logger"
	"github.com/avolkov/filebox-server/internal/model"
)

// Router assembles handlers and middleware into the HTTP route table.
type Router struct {
	authService    handler.AuthService
	fileService    handler.FileService
	tokenService   handler.TokenService
	authorizer     middleware.TokenAuthorizer
	contextManager model.ContextManager
	refreshTTL     time.Duration
	logger         *logger.Logger
}

// New creates a router over the given services.
func New(
	authService handler.AuthService,
	fileService handler.FileService,
	tokenService handler.TokenService,
	authorizer middleware.TokenAuthorizer,
	contextManager model.ContextManager,
	refreshTTL time.Duration,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		fileService:    fileService,
		tokenService:   tokenService,
		authorizer:     authorizer,
		contextManager: contextManager,
		refreshTTL:     refreshTTL,
		logger:         logger,
	}
}

// Register builds the route table. The authorization guard wraps every
// protected route; signup, signin and rotation stay open.
func (r *Router) Register() http.Handler {
	authHandler := handler.NewAuth(r.authService, r.tokenService, r.contextManager, r.refreshTTL, r.logger)
	fileHandler := handler.NewFile(r.fileService, r.contextManager, r.logger)
	infoHandler := handler.NewInfo(r.contextManager)

	authMW := middleware.NewAuthenticate(r.authorizer, r.contextManager, r.logger)
	logMW := middleware.NewLogging(r.logger)

	guarded := func(h http.HandlerFunc) http.Handler {
		return authMW.Handle(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/signin", authHandler.Signin)
	mux.HandleFunc("POST /api/auth/signin/new_token", authHandler.RefreshToken)
	mux.Handle("POST /api/auth/logout", guarded(authHandler.Logout))

	mux.Handle("GET /api/info", guarded(infoHandler.Get))

	mux.Handle("POST /api/files/upload", guarded(fileHandler.Upload))
	mux.Handle("GET /api/files/list", guarded(fileHandler.List))
	mux.Handle("GET /api/files/{id}", guarded(fileHandler.GetDetails))
	mux.Handle("GET /api/files/download/{id}", guarded(fileHandler.Download))
	mux.Handle("DELETE /api/files/delete/{id}", guarded(fileHandler.Delete))
	mux.Handle("PUT /api/files/update/{id}", guarded(fileHandler.Update))

	return logMW.Handle(mux)
}
