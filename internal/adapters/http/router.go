package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rooms/internal/adapters/signal"
	"github.com/dkeye/Rooms/internal/config"
	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
)

// Inspector is the read-only view of the registry served over REST.
type Inspector interface {
	Rooms() []core.RoomInfo
	Room(id domain.RoomID) (domain.Room, bool)
	PlayersInRoom(id domain.RoomID) []core.PlayerDTO
}

type GameTypeLister interface {
	List() []domain.GameType
}

type roomView struct {
	core.RoomInfo
	State domain.Values `json:"state"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctrl *signal.SignalWSController, rooms Inspector, gameTypes GameTypeLister) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(requestLogger())
	}
	r.Use(gin.Recovery())

	ws := func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("path", c.FullPath()).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c)
	}
	r.GET("/ws", ws)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/ws", ws)

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": rooms.Rooms()})
	})

	api.GET("/rooms/:id", func(c *gin.Context) {
		room, ok := rooms.Room(domain.RoomID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, roomView{
			RoomInfo: core.RoomInfo{
				ID:          room.ID,
				GameType:    room.GameType,
				MemberCount: len(room.Members),
				CreatedAt:   room.CreatedAt,
			},
			State: room.State,
		})
	})

	api.GET("/rooms/:id/players", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"players": rooms.PlayersInRoom(domain.RoomID(c.Param("id")))})
	})

	api.GET("/gametypes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"gameTypes": gameTypes.List()})
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("module", "adapters.http").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
