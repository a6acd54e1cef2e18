package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler is one resource of the API, mounted under Root() in the public,
// private and admin groups.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup)
}
