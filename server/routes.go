package server

import (
	"net/http"

	"github.com/Luismorlan/newsportal/server/middlewares"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every portal route. News and articles are two route
// namespaces over the same parameterized workflow, reads are public and
// mutations require the identity header.
func RegisterRoutes(router *gin.Engine, s *Server) {
	identity := middlewares.Identity()

	for _, w := range []postWorkflow{newsWorkflow, articleWorkflow} {
		group := router.Group("/" + w.routeName)

		group.GET("", s.ListPosts)
		group.GET("/:id", s.DetailPost(w))

		group.POST("", identity, s.CreatePost(w))
		group.PUT("/:id", identity, s.UpdatePost(w))
		group.DELETE("/:id", identity, s.DeletePost(w))
	}

	// Not nested under /news, the route tree cannot mix the static segment
	// with the :id wildcard.
	router.GET("/search", s.SearchPosts)

	router.POST("/posts/:id/like", identity, s.VotePost(1))
	router.POST("/posts/:id/dislike", identity, s.VotePost(-1))
	router.GET("/posts/:id/comments", s.ListComments)
	router.POST("/posts/:id/comments", identity, s.CreateComment)
	router.POST("/comments/:id/like", identity, s.VoteComment(1))
	router.POST("/comments/:id/dislike", identity, s.VoteComment(-1))

	router.GET("/categories", s.ListCategories)
	router.POST("/categories/:id/subscribe", identity, s.Subscribe)
	router.POST("/categories/:id/unsubscribe", identity, s.Unsubscribe)

	router.POST("/authors/me", identity, s.MakeAuthor)
	router.POST("/authors/:id/recompute-rating", identity, s.RecomputeAuthorRating)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}
