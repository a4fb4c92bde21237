package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/materiku/materiku-backend/internal/authz"
	"github.com/materiku/materiku-backend/internal/config"
	"github.com/materiku/materiku-backend/internal/middleware"
	"github.com/materiku/materiku-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation. An
// empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams moderation events to course moderators.
type WSHandler struct {
	rdb           *redis.Client
	courseService *service.CourseService
	perms         *authz.PermissionService
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, courseService *service.CourseService, perms *authz.PermissionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:           rdb,
		courseService: courseService,
		perms:         perms,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// ModerationStream godoc
// WS /ws/v1/courses/:course_id/moderation
// Pushes every moderation event for the course, as published by the material
// service. Reachable only by actors who could moderate the course.
func (h *WSHandler) ModerationStream(c *gin.Context) {
	actor := middleware.GetActor(c)

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course ID"})
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), courseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	// Same gate as the pending queue: course owner with materials:moderate,
	// or a materials:moderate_any holder.
	if err := h.perms.Authorize(actor, authz.ActionModerateMaterial, course.OwnerID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to moderate this course"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("actor_id", actor.ID).
		Str("course_id", courseID.String()).
		Logger()
	wsLog.Info().Msg("Moderator connected")

	sub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.CourseModerationChannel(courseID.String()))
	defer sub.Close()

	// Reader goroutine: the client sends nothing meaningful, but reading is
	// required to process close and pong frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	events := sub.Channel()
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			wsLog.Info().Msg("Moderator disconnected")
			return
		}
	}
}
