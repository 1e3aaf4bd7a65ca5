package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-facecam/pkg/hub"
	"github.com/teslashibe/go-facecam/pkg/recognizer"
)

// StatusResponse is the body of GET /api/status
type StatusResponse struct {
	recognizer.Stats
	CameraClients int `json:"camera_clients"`
	FaceClients   int `json:"face_clients"`
}

// handleStatus returns loop progress and viewer counts
func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp := StatusResponse{
		CameraClients: s.cameraHub.ClientCount(),
		FaceClients:   s.facesHub.ClientCount(),
	}
	if s.StatsFunc != nil {
		resp.Stats = s.StatsFunc()
	}
	return c.JSON(resp)
}

// handleFaces returns the most recent detection result
func (s *Server) handleFaces(c *fiber.Ctx) error {
	ev, ok := s.LastEvent()
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(ev)
}

// serveHub attaches a websocket connection to h until it disconnects
func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		client := hub.NewClient(h, c)
		if client == nil {
			return
		}
		client.Run()
	}
}
