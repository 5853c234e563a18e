package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                    = 0
	CodeBadRequest            = 40000
	CodeUsernameExists        = 40001
	CodeEmailExists           = 40002
	CodeValidation            = 40003
	CodeCorpusNameTaken       = 40004
	CodeInvalidIndexName      = 40005
	CodeUnauthorized          = 40100
	CodeInvalidCredentials    = 40101
	CodeNotFound              = 40400
	CodeDocumentNotFound      = 40401
	CodeAnalysisUnavailable   = 40402
	CodeNotReady              = 40403
	CodeCorpusNotFound        = 40404
	CodeInternalServer        = 50000
	CodeDependencyUnavailable = 50300
)

type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func OK(c *gin.Context, data any) {
	JSON(c, 200, data)
}

// JSON writes a successful envelope with a status other than 200, such as
// 201 after a create.
func JSON(c *gin.Context, httpStatus int, data any) {
	c.JSON(httpStatus, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// Invalid reports field errors, keyed by field name.
func Invalid(c *gin.Context, fields map[string][]string) {
	c.JSON(400, APIResponse{
		Code:    CodeValidation,
		Message: "invalid request payload",
		Data:    fields,
	})
}
