package welcome

// Data is the service banner returned by the root route.
type Data struct {
	Message string `json:"message" doc:"Welcome message" example:"Welcome to your Spring Boot application"`
	Version string `json:"version" doc:"Application version" example:"1.0.0"`
	Status  string `json:"status" doc:"Run state" example:"running"`
}

// GetOutput is the response wrapper for GET /.
type GetOutput struct {
	Body Data
}
