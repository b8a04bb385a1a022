package router

import (
	"go-campus-api/handler"
	"net/http"
)

func NewRouter(authHandler *handler.AuthHandler, notificationHandler *handler.NotificationHandler, realtimeHandler *handler.RealtimeHandler, authMw *handler.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)

	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	mux.Handle("GET /notifications", authMw.Handle(handler.ErrorHandlingMiddleware(notificationHandler.List)))
	mux.Handle("POST /notifications", authMw.Handle(handler.AdminMiddleware(handler.ErrorHandlingMiddleware(notificationHandler.Create))))
	mux.Handle("PATCH /notifications/{id}/read", authMw.Handle(handler.ErrorHandlingMiddleware(notificationHandler.MarkRead)))
	mux.Handle("PATCH /notifications/{id}", authMw.Handle(handler.ErrorHandlingMiddleware(notificationHandler.Update)))

	mux.Handle("GET /notifications/stream", authMw.Handle(http.HandlerFunc(realtimeHandler.Stream)))
	mux.HandleFunc("GET /ws", realtimeHandler.Socket)

	return mux
}
