package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"shorts-pipeline/internal/history"
	"shorts-pipeline/internal/job"
)

// statusPushInterval is how often the websocket feed pushes a snapshot.
const statusPushInterval = 2 * time.Second

// Server exposes the dashboard API over the coordinator and the
// produced-video history store.
type Server struct {
	coord    *job.Coordinator
	store    *history.Store
	upgrader websocket.Upgrader
}

// New creates a new Server.
func New(coord *job.Coordinator, store *history.Store) *Server {
	return &Server{
		coord: coord,
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local single-operator dashboard
			},
		},
	}
}

// Register attaches all routes to the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.health)
	e.POST("/api/run", s.run)
	e.POST("/api/jobs/:id/pause", s.pause)
	e.POST("/api/jobs/:id/resume", s.resume)
	e.POST("/api/jobs/:id/cancel", s.cancel)
	e.GET("/api/status", s.status)
	e.GET("/api/videos", s.videos)
	e.GET("/ws/status", s.statusFeed)
}

// RunRequest is the job submission payload.
type RunRequest struct {
	Niche string `json:"niche" validate:"required"`
	Count int    `json:"count" validate:"min=1"`
}

// RunResponse carries the id of the submitted job.
type RunResponse struct {
	JobID string `json:"jobId"`
}

// Stats is the aggregate block of a status snapshot.
type Stats struct {
	TotalVideos int `json:"totalVideos"`
	VideosToday int `json:"videosToday"`
	ActiveJobs  int `json:"activeJobs"`
	SuccessRate int `json:"successRate"`
}

// StatusResponse is one dashboard snapshot.
type StatusResponse struct {
	Stats Stats     `json:"stats"`
	Jobs  []job.Job `json:"jobs"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) run(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return job.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id, err := s.coord.Submit(req.Niche, req.Count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, RunResponse{JobID: id})
}

func (s *Server) pause(c echo.Context) error {
	if err := s.coord.Pause(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) resume(c echo.Context) error {
	if err := s.coord.Resume(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) cancel(c echo.Context) error {
	if err := s.coord.Cancel(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, s.snapshot())
}

func (s *Server) videos(c echo.Context) error {
	videos, err := s.store.Recent(8)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]history.Video{"videos": videos})
}

// statusFeed pushes a status snapshot over a websocket on a fixed
// interval until the peer goes away.
func (s *Server) statusFeed(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	if err := conn.WriteJSON(s.snapshot()); err != nil {
		return nil
	}
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
			if err := conn.WriteJSON(s.snapshot()); err != nil {
				return nil
			}
		}
	}
}

// snapshot composes coordinator state with the durable video counts.
func (s *Server) snapshot() StatusResponse {
	coordSnap := s.coord.Status()

	stats := Stats{
		ActiveJobs:  coordSnap.ActiveJobs,
		SuccessRate: coordSnap.SuccessRate,
	}

	if total, err := s.store.Total(); err != nil {
		log.Printf("[server] ⚠️  Could not count videos: %v", err)
	} else {
		stats.TotalVideos = total
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	if today, err := s.store.CountSince(midnight); err != nil {
		log.Printf("[server] ⚠️  Could not count today's videos: %v", err)
	} else {
		stats.VideosToday = today
	}

	return StatusResponse{Stats: stats, Jobs: coordSnap.Jobs}
}
