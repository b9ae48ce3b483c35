package http

const (
	CodeUnknown              = "UNKNOWN"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeBadRequest           = "BAD_REQUEST"
	CodeInvalidPath          = "INVALID_PATH"
	CodeMissingAuthorization = "MISSING_AUTHORIZATION"
	CodeInvalidToken         = "INVALID_TOKEN"
)
