package welcome

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/starter-api/internal/platform/logging"
)

const (
	message = "Welcome to your Spring Boot application"
	version = "1.0.0"
	status  = "running"
)

// Register wires the root route into the provided API router.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service banner",
		Description: "Returns a welcome message with the application version and run state.",
		Tags:        []string{"Service"},
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	applog.LogDebug(ctx, "root get", zap.String("path", "/"))
	return &GetOutput{Body: Data{Message: message, Version: version, Status: status}}, nil
}
