// Package web provides an optional live preview of the detection loop
package web

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-facecam/internal/log"
	"github.com/teslashibe/go-facecam/pkg/detection"
	"github.com/teslashibe/go-facecam/pkg/hub"
	"github.com/teslashibe/go-facecam/pkg/recognizer"
)

// FaceEvent is the detection result for one frame
type FaceEvent struct {
	TsUnixMs int64            `json:"ts"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Faces    []detection.Face `json:"faces"`
}

// Config holds preview server settings
type Config struct {
	Port          string        // Listen port
	FrameInterval time.Duration // Minimum gap between JPEG frames sent to viewers
	JPEGQuality   int           // 1-100
	StaticDir     string        // Directory served at "/"
}

// DefaultConfig returns preview defaults: port 8080, 10 FPS, quality 80
func DefaultConfig() Config {
	return Config{
		Port:          "8080",
		FrameInterval: 100 * time.Millisecond,
		JPEGQuality:   80,
		StaticDir:     "./web",
	}
}

// Server is the preview server
type Server struct {
	app    *fiber.App
	cfg    Config
	logger *slog.Logger

	// Hubs for websocket broadcast
	cameraHub *hub.Hub
	facesHub  *hub.Hub

	lastEvent *FaceEvent
	lastFrame time.Time
	mu        sync.RWMutex

	// StatsFunc reports loop progress for /api/status
	StatsFunc func() recognizer.Stats
}

// NewServer creates a new preview server
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    log.With("component", "web"),
		cameraHub: hub.New("camera"),
		facesHub:  hub.New("faces"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "facecam preview",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/faces", s.handleFaces)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/camera", websocket.New(s.serveHub(s.cameraHub)))
	app.Get("/ws/faces", websocket.New(s.serveHub(s.facesHub)))

	s.app = app
	return s
}

// App exposes the fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured port until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hubs and serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("preview listening", "addr", ln.Addr().String())

	go s.cameraHub.Run(ctx)
	go s.facesHub.Run(ctx)
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("preview shutdown", "error", err)
		}
	}()

	return s.app.Listener(ln)
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("preview server stopped", "error", err)
		}
	}()
}

// PublishFrame is a recognizer.FrameHook: it records the detections,
// pushes them to face subscribers and, at most once per FrameInterval
// and only while viewers are connected, pushes the annotated frame as JPEG.
func (s *Server) PublishFrame(frame gocv.Mat, faces []detection.Face) {
	ev := FaceEvent{
		TsUnixMs: time.Now().UnixMilli(),
		Width:    frame.Cols(),
		Height:   frame.Rows(),
		Faces:    append([]detection.Face{}, faces...),
	}

	s.mu.Lock()
	s.lastEvent = &ev
	sendFrame := s.cameraHub.ClientCount() > 0 && time.Since(s.lastFrame) >= s.cfg.FrameInterval
	if sendFrame {
		s.lastFrame = time.Now()
	}
	s.mu.Unlock()

	if err := s.facesHub.BroadcastJSON(ev); err != nil {
		s.logger.Warn("encode face event", "error", err)
	}

	if sendFrame {
		data, err := encodeJPEG(frame, s.cfg.JPEGQuality)
		if err != nil {
			s.logger.Warn("encode frame", "error", err)
			return
		}
		s.logger.Debug("frame sent", log.Bytes("jpeg", len(data)))
		s.cameraHub.BroadcastBinary(data)
	}
}

// LastEvent returns the most recent detection result, if any
func (s *Server) LastEvent() (FaceEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastEvent == nil {
		return FaceEvent{}, false
	}
	return *s.lastEvent, true
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func encodeJPEG(frame gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	// The native buffer is freed on Close, so copy it out.
	return bytes.Clone(buf.GetBytes()), nil
}
