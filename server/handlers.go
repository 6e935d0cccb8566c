package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Luismorlan/newsportal/dispatcher"
	"github.com/Luismorlan/newsportal/model"
	"github.com/Luismorlan/newsportal/store"
	. "github.com/Luismorlan/newsportal/utils/log"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const (
	postPageSize     = 10
	categoryPageSize = 6
)

// Server holds the collaborators every handler needs.
type Server struct {
	Store    *store.Store
	EventBus *gochannel.GoChannel

	// Explicit feature flag: suppress immediate new-post notifications
	// entirely (see app_setting.DISABLE_IMMEDIATE_NOTIFY).
	DisableImmediateNotify bool
}

func NewServer(s *store.Store, bus *gochannel.GoChannel, disableImmediateNotify bool) *Server {
	return &Server{
		Store:                  s,
		EventBus:               bus,
		DisableImmediateNotify: disableImmediateNotify,
	}
}

// postWorkflow parameterizes the shared create/detail/edit/delete handlers
// by a small data value. News and articles run the exact same workflow and
// differ only in this value.
type postWorkflow struct {
	postType  string
	routeName string
}

var (
	newsWorkflow    = postWorkflow{postType: model.PostTypeNews, routeName: "news"}
	articleWorkflow = postWorkflow{postType: model.PostTypeArticle, routeName: "articles"}
)

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrDailyQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "daily post quota exceeded"})
	default:
		Log.Error("internal error: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pageOffset(c *gin.Context, pageSize int) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

type createPostRequest struct {
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	CategoryIDs []string `json:"category_ids"`
}

type updatePostRequest struct {
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	CategoryIDs []string `json:"category_ids"`
}

type createCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListPosts serves the paginated post listing, newest first. Both route
// namespaces list all posts, matching the portal's landing pages.
func (s *Server) ListPosts(c *gin.Context) {
	posts, err := s.Store.ListPosts(postPageSize, pageOffset(c, postPageSize))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// SearchPosts filters posts by title substring, author and creation date.
func (s *Server) SearchPosts(c *gin.Context) {
	q := store.SearchPostsQuery{
		TitleContains: c.Query("title"),
		AuthorID:      c.Query("author_id"),
		Limit:         postPageSize,
		Offset:        pageOffset(c, postPageSize),
	}
	if after := c.Query("created_after"); after != "" {
		ts, err := time.Parse("2006-01-02", after)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "created_after must be YYYY-MM-DD"})
			return
		}
		q.CreatedAfter = &ts
	}

	posts, err := s.Store.SearchPosts(q)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// DetailPost serves one post inside the workflow's route namespace. A news
// id requested under /articles is a 404, and vice versa.
func (s *Server) DetailPost(w postWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := s.Store.GetPost(c.Param("id"), w.postType)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// CreatePost creates a post in the workflow's namespace and publishes the
// post-created event. The response does not wait for any notification
// delivery, dispatch is fully asynchronous.
func (s *Server) CreatePost(w postWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID := c.GetString("sub")
		author, err := s.Store.GetOrCreateAuthor(userID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		post, err := s.Store.CreatePost(store.CreatePostInput{
			AuthorID:    author.Id,
			PostType:    w.postType,
			Title:       req.Title,
			Content:     req.Content,
			CategoryIDs: req.CategoryIDs,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}

		if !s.DisableImmediateNotify {
			if err := dispatcher.PublishPostCreated(s.EventBus, post.Id); err != nil {
				// Never fail the creation over a notification problem.
				Log.Errorf("fail to publish post created event for %s: %s", post.Id, err)
			}
		}

		c.JSON(http.StatusCreated, post)
	}
}

// UpdatePost edits the caller's own post. Edits never re-notify.
func (s *Server) UpdatePost(w postWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		author, err := s.Store.GetOrCreateAuthor(c.GetString("sub"))
		if err != nil {
			abortWithError(c, err)
			return
		}

		post, err := s.Store.UpdatePost(c.Param("id"), w.postType, author.Id, store.UpdatePostInput{
			Title:       req.Title,
			Content:     req.Content,
			CategoryIDs: req.CategoryIDs,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// DeletePost deletes a post with its comments and category attachments.
func (s *Server) DeletePost(w postWorkflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Store.DeletePost(c.Param("id"), w.postType); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// VotePost applies one like/dislike event to a post's rating.
func (s *Server) VotePost(delta int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Store.VotePost(c.Param("id"), delta); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"voted": true})
	}
}

// CreateComment attaches a comment to a post.
func (s *Server) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := s.Store.CreateComment(c.Param("id"), c.GetString("sub"), req.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments serves a post's comments, newest first.
func (s *Server) ListComments(c *gin.Context) {
	comments, err := s.Store.CommentsOfPost(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// VoteComment applies one like/dislike event to a comment's rating.
func (s *Server) VoteComment(delta int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Store.VoteComment(c.Param("id"), delta); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"voted": true})
	}
}

// ListCategories serves the paginated category listing.
func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.Store.ListCategories(categoryPageSize, pageOffset(c, categoryPageSize))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Subscribe registers the caller for category notifications. Subscribing
// twice is a no-op success.
func (s *Server) Subscribe(c *gin.Context) {
	if err := s.Store.Subscribe(c.Param("id"), c.GetString("sub")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed": true})
}

// Unsubscribe removes the caller's subscription. Unsubscribing a non-member
// is a no-op success.
func (s *Server) Unsubscribe(c *gin.Context) {
	if err := s.Store.Unsubscribe(c.Param("id"), c.GetString("sub")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed": false})
}

// MakeAuthor turns the caller into an author, idempotently.
func (s *Server) MakeAuthor(c *gin.Context) {
	author, err := s.Store.GetOrCreateAuthor(c.GetString("sub"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

// RecomputeAuthorRating rebuilds the derived author rating on demand.
func (s *Server) RecomputeAuthorRating(c *gin.Context) {
	author, err := s.Store.RecomputeAuthorRating(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}
