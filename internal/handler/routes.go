package handler

import "github.com/labstack/echo/v4"

// RegisterRoutes wires the three handlers onto the router.
func RegisterRoutes(r *echo.Echo, claims *ClaimHandler, projects *ProjectHandler, threads *DiscussionHandler) {
	r.POST("/claims", claims.PostClaim)
	r.GET("/claims", claims.ListClaims)
	r.GET("/claims/:id", claims.GetClaim)
	r.POST("/claims/:id/transition", claims.PostTransition)

	r.GET("/claims/:id/thread", threads.GetThread)
	r.POST("/claims/:id/comments", threads.PostComment)
	r.POST("/claims/:id/comments/:comment_id/replies", threads.PostReply)

	r.POST("/projects", projects.PostProject)
	r.PUT("/projects/:id", projects.PutProject)
	r.GET("/projects/:id", projects.GetProject)
	r.GET("/staff", projects.ListStaff)
}
