package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/route-aggregator/internal/common"
)

// Response is the envelope of every API reply. Code carries the machine
// readable error kind.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, code, err string) {
	c.JSON(status, Response{
		Success: false,
		Code:    code,
		Error:   err,
	})
}

// HandleError writes err with the status and code common.HTTPErrorFor maps it to.
func HandleError(c *gin.Context, err error) {
	httpErr := common.HTTPErrorFor(err)
	Error(c, httpErr.StatusCode, httpErr.Code, httpErr.Message)
}

func BadRequest(c *gin.Context, err string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", err)
}

func NotFound(c *gin.Context, err string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", err)
}
