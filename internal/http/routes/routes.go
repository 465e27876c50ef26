package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/starter-api/internal/http/data"
	"github.com/janisto/starter-api/internal/http/health"
	"github.com/janisto/starter-api/internal/http/welcome"
)

// APIPrefix is the path prefix for data routes.
const APIPrefix = "/api"

// Title is the OpenAPI document title.
const Title = "Starter API"

// Config returns the huma configuration used by the server. The default
// $schema link transformer is removed so bodies carry only their own fields.
func Config(version, docsPath string) huma.Config {
	cfg := huma.DefaultConfig(Title, version)
	cfg.CreateHooks = nil
	if docsPath != "" {
		cfg.DocsPath = docsPath
	}
	return cfg
}

// AdvertiseCBOR lists application/cbor next to application/json for every
// request and response body in the OpenAPI document.
func AdvertiseCBOR(api huma.API) {
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)
}

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API) {
	welcome.Register(api)
	health.Register(api)
	data.Register(api, APIPrefix)
}
