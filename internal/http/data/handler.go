package data

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/starter-api/internal/platform/logging"
)

// Register wires the data route under prefix (normally "/api").
func Register(api huma.API, prefix string) {
	path := prefix + "/data"
	huma.Register(api, huma.Operation{
		OperationID: "list-data",
		Method:      http.MethodGet,
		Path:        path,
		Summary:     "List sample items",
		Description: "Returns the three sample items in id order.",
		Tags:        []string{"Data"},
	}, func(ctx context.Context, _ *struct{}) (*ListOutput, error) {
		applog.LogDebug(ctx, "data list", zap.String("path", path))
		return &ListOutput{Body: sampleItems()}, nil
	})
}

// sampleItems builds a new slice per call so no response shares backing storage.
func sampleItems() []Item {
	return []Item{
		{ID: 1, Name: "Item 1"},
		{ID: 2, Name: "Item 2"},
		{ID: 3, Name: "Item 3"},
	}
}
