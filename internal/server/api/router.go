// Package api exposes the eCabinet HTTP API and the realtime WebSocket feed.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
	sc "github.com/nthieuit88-gif/ecabitnetv7/internal/server/config"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/hub"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/services"
)

// API groups the HTTP handlers and their dependencies.
type API struct {
	users    *services.UserService
	docs     *services.DocumentService
	schedule *services.ScheduleService
	hub      *hub.Hub
	config   *sc.Config
	logger   logging.Logger
}

func New(users *services.UserService, docs *services.DocumentService, schedule *services.ScheduleService, h *hub.Hub, config *sc.Config, logger logging.Logger) *API {
	return &API{
		users:    users,
		docs:     docs,
		schedule: schedule,
		hub:      h,
		config:   config,
		logger:   logger.With("module", "api"),
	}
}

// Router builds the gin engine with all routes registered.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/api/auth/login", a.Login)
	r.GET("/api/ws", a.ServeWS)

	authed := r.Group("/api", a.AuthRequired())
	{
		authed.GET("/users", a.ListUsers)
		authed.GET("/users/:id", a.GetUser)
		authed.POST("/users", a.CreateUser)
		authed.PUT("/users/:id", a.UpdateUser)
		authed.DELETE("/users/:id", a.DeleteUser)
		authed.GET("/users/:id/session", a.GetSession)
		authed.PUT("/users/:id/session", a.PutSession)

		authed.GET("/documents", a.ListDocuments)
		authed.GET("/documents/:id", a.GetDocument)
		authed.POST("/documents", a.CreateDocument)
		authed.POST("/documents/upload", a.UploadDocument)
		authed.PUT("/documents/:id", a.UpdateDocument)
		authed.DELETE("/documents/:id", a.DeleteDocument)

		authed.GET("/rooms", a.ListRooms)
		authed.POST("/rooms", a.CreateRoom)
		authed.PUT("/rooms/:id/status", a.UpdateRoomStatus)
		authed.DELETE("/rooms/:id", a.DeleteRoom)

		authed.GET("/meetings", a.ListMeetings)
		authed.POST("/meetings", a.CreateMeeting)
		authed.PUT("/meetings/:id", a.UpdateMeeting)
		authed.DELETE("/meetings/:id", a.DeleteMeeting)
	}

	return r
}
