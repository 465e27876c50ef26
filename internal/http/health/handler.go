package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/starter-api/internal/platform/logging"
)

// StatusOK is the only status the health route reports.
const StatusOK = "ok"

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status" doc:"Health status" example:"ok"`
}

// Output is the response wrapper for GET /health.
type Output struct {
	Body Response
}

// Register wires the health route into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness probe",
		Tags:        []string{"Service"},
	}, handler)
}

func handler(ctx context.Context, _ *struct{}) (*Output, error) {
	applog.LogDebug(ctx, "health check", zap.String("path", "/health"))
	return &Output{Body: Response{Status: StatusOK}}, nil
}
