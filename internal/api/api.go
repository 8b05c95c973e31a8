// Package api exposes the submission surface over HTTP. The contract is
// deliberately thin: submission returns 202 with a job id immediately, and
// terminal state is observable only through the persisted read endpoints.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rankpipe/rankpipe/internal/coordinator"
	"github.com/rankpipe/rankpipe/internal/storage"
	"github.com/rankpipe/rankpipe/pkg/metrics"
)

type Server struct {
	coord *coordinator.Coordinator
	db    *storage.DB
	log   *logrus.Logger
}

func NewServer(coord *coordinator.Coordinator, db *storage.DB, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{coord: coord, db: db, log: log}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/ingest", s.ingestHandler)
	r.GET("/games", s.listGamesHandler)
	r.GET("/games/:id/stats", s.gameStatsHandler)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

type ingestRequest struct {
	Path string `json:"path" binding:"required"`
}

// ingestHandler accepts a storage path and fires the asynchronous job.
// The response never waits on, or reports, pipeline errors.
func (s *Server) ingestHandler(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	jobID := s.coord.Submit(req.Path)
	s.log.WithFields(logrus.Fields{"job": jobID, "path": req.Path}).Info("ingestion submitted")
	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "processing",
	})
}

func (s *Server) listGamesHandler(c *gin.Context) {
	games, err := s.db.ListGames(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("list games failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(games))
	for _, g := range games {
		out = append(out, gin.H{
			"id":               g.ID,
			"map":              g.MapName,
			"mode":             g.Mode,
			"ct_score":         g.CTScore,
			"t_score":          g.TScore,
			"duration_minutes": g.DurationMinutes,
			"ended_at":         g.EndTime,
		})
	}
	c.JSON(http.StatusOK, gin.H{"games": out})
}

func (s *Server) gameStatsHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	game, err := s.db.GetGame(c.Request.Context(), id)
	if err != nil {
		s.log.WithError(err).Error("get game failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if game == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}

	stats, err := s.db.GetPlayerStats(c.Request.Context(), id)
	if err != nil {
		s.log.WithError(err).Error("get player stats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	accolades, err := s.db.GetAccolades(c.Request.Context(), id)
	if err != nil {
		s.log.WithError(err).Error("get accolades failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	players := make([]gin.H, 0, len(stats))
	for _, st := range stats {
		players = append(players, gin.H{
			"player_id":      st.PlayerID,
			"name":           st.Name,
			"team":           st.Team.String(),
			"kills":          st.Kills,
			"deaths":         st.Deaths,
			"assists":        st.Assists,
			"headshot_kills": st.HeadshotKills,
			"hs_percent":     st.HSPercent(),
			"damage_dealt":   st.DamageDealt,
			"adr":            st.ADR(),
			"rounds_played":  st.RoundsPlayed,
			"rating":         st.Rating,
		})
	}
	awards := make([]gin.H, 0, len(accolades))
	for _, a := range accolades {
		awards = append(awards, gin.H{
			"type":      a.Type,
			"player_id": a.PlayerID,
			"value":     a.Value,
			"rank":      a.RankPosition,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"game": gin.H{
			"id":       game.ID,
			"map":      game.MapName,
			"ct_score": game.CTScore,
			"t_score":  game.TScore,
		},
		"players":   players,
		"accolades": awards,
	})
}
