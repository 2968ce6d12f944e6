package http

const (
	KeyHeaderContentType   = "Content-Type"
	KeyHeaderAuthorization = "Authorization"
	KeyHeaderRequestID     = "X-Request-Id"
)

const (
	ValueHeaderApplicationJSON = "application/json"
	ValueBearerPrefix          = "Bearer "
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
