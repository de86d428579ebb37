package evaluator

import (
	"context"
	"errors"

	"github.com/dshills/logicflow/pkg/compiler"
	lferrors "github.com/dshills/logicflow/pkg/errors"
	"github.com/dshills/logicflow/pkg/logging"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
)

// StatusSuccess is the status reported with every successful evaluation
const StatusSuccess = "success"

// Server exposes an Evaluator over HTTP
type Server struct {
	app       *fiber.App
	evaluator *Evaluator
	logger    logging.Logger
}

// NewServer creates the HTTP surface: POST /evaluate and GET /healthz
func NewServer(evaluator *Evaluator, logger logging.Logger) *Server {
	s := &Server{
		app:       fiber.New(fiber.Config{AppName: "logicflow evaluator"}),
		evaluator: evaluator,
		logger:    logging.OrNoOp(logger),
	}

	s.app.Use(recoverer.New())
	s.app.Use(cors.New())

	s.app.Post("/evaluate", s.handleEvaluate)
	s.app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("evaluator listening on %s", addr)
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleEvaluate(c fiber.Ctx) error {
	payload, err := compiler.Decode(c.Body())
	if err != nil {
		s.logger.Warn("rejected request: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	results, err := s.evaluator.Evaluate(c.Context(), payload)
	if err != nil {
		var opErr *lferrors.OperationalError
		if errors.As(err, &opErr) {
			s.logger.Warn("evaluation failed: %v", opErr)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": opErr.Detail})
		}
		s.logger.Error("evaluation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Server error: " + err.Error()})
	}

	return c.JSON(fiber.Map{"results": results, "status": StatusSuccess})
}
