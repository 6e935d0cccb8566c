package store

import (
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/Luismorlan/newsportal/utils"
	. "github.com/Luismorlan/newsportal/utils/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// An author can publish at most this many posts per calendar day. This is a
// hard invariant of post creation, not a form-level convenience.
const MaxDailyPostsPerAuthor = 3

// QuotaStore tracks per-author daily post counters. Backed by redis in
// production, faked in tests.
type QuotaStore interface {
	IncrDailyPostCount(authorId string, date string) (int64, error)
	DecrDailyPostCount(authorId string, date string) error
}

type CreatePostInput struct {
	AuthorID    string
	PostType    string
	Title       string
	Content     string
	CategoryIDs []string
}

type UpdatePostInput struct {
	Title       string
	Content     string
	CategoryIDs []string
}

// SearchPostsQuery filters the post listing. Zero values mean "no filter".
type SearchPostsQuery struct {
	TitleContains string
	AuthorID      string
	CreatedAfter  *time.Time
	Limit         int
	Offset        int
}

// CreatePost creates a post and its category attachments in one transaction.
// The daily quota is consumed before the transaction; quota-store outage is
// a soft failure (creation proceeds, with a log line) since losing redis
// should not take down publishing. A slot counts a created post: when
// creation fails after the increment the slot is given back.
func (s *Store) CreatePost(in CreatePostInput) (post *model.Post, err error) {
	if s.Quota != nil {
		date := time.Now().Format("2006-01-02")
		count, quotaErr := s.Quota.IncrDailyPostCount(in.AuthorID, date)
		switch {
		case quotaErr != nil:
			Log.Error("fail to consult post quota store, allowing creation: ", quotaErr)
		case count > MaxDailyPostsPerAuthor:
			if decrErr := s.Quota.DecrDailyPostCount(in.AuthorID, date); decrErr != nil {
				Log.Error("fail to release post quota: ", decrErr)
			}
			return nil, ErrDailyQuotaExceeded
		default:
			defer func() {
				if err == nil {
					return
				}
				if decrErr := s.Quota.DecrDailyPostCount(in.AuthorID, date); decrErr != nil {
					Log.Error("fail to release post quota after failed creation: ", decrErr)
				}
			}()
		}
	}

	var categories []*model.Category
	if len(in.CategoryIDs) > 0 {
		ids := uniqueIds(in.CategoryIDs)
		if err := s.DB.Where("id IN ?", ids).Find(&categories).Error; err != nil {
			return nil, err
		}
		if len(categories) != len(ids) {
			return nil, ErrNotFound
		}
	}

	post = &model.Post{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		AuthorID:  in.AuthorID,
		PostType:  in.PostType,
		Title:     in.Title,
		Content:   in.Content,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if err := tx.Model(post).Association("Categories").Append(categories); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// uniqueIds drops duplicate ids while keeping order, so a request repeating
// one category neither double-attaches nor trips the existence check.
func uniqueIds(ids []string) []string {
	var unique []string
	for _, id := range ids {
		if !utils.ContainsString(unique, id) {
			unique = append(unique, id)
		}
	}
	return unique
}

// GetPost looks a post up inside one route namespace. A valid id under the
// wrong namespace is ErrNotFound, news and articles never leak into each
// other's routes.
func (s *Store) GetPost(id string, postType string) (*model.Post, error) {
	var post model.Post
	res := s.DB.Preload("Author.User").Preload("Categories").
		Where("id = ? AND post_type = ?", id, postType).First(&post)
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &post, nil
}

// GetPostWithCategories re-reads a post and its category attachments fresh
// from the DB regardless of namespace. The dispatcher uses this instead of
// the in-memory object that triggered the event, to tolerate creation and
// categorization happening in separate steps.
func (s *Store) GetPostWithCategories(id string) (*model.Post, error) {
	var post model.Post
	res := s.DB.Preload("Author.User").Preload("Categories").
		Where("id = ?", id).First(&post)
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &post, nil
}

// ListPosts returns one page of posts, newest first.
func (s *Store) ListPosts(limit int, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.DB.Preload("Author.User").
		Order("created_at desc").Limit(limit).Offset(offset).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// SearchPosts lists posts matching the query filters, newest first.
func (s *Store) SearchPosts(q SearchPostsQuery) ([]*model.Post, error) {
	tx := s.DB.Preload("Author.User").Model(&model.Post{})
	if q.TitleContains != "" {
		tx = tx.Where("title ILIKE ?", "%"+q.TitleContains+"%")
	}
	if q.AuthorID != "" {
		tx = tx.Where("author_id = ?", q.AuthorID)
	}
	if q.CreatedAfter != nil {
		tx = tx.Where("created_at >= ?", *q.CreatedAfter)
	}
	var posts []*model.Post
	err := tx.Order("created_at desc").Limit(q.Limit).Offset(q.Offset).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PostsInCategorySince returns posts attached to the category created at or
// after the given instant, newest first. This is the digest window query.
func (s *Store) PostsInCategorySince(categoryID string, since time.Time) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.DB.Model(&model.Post{}).
		Preload("Author.User").
		Joins("JOIN post_categories ON post_categories.post_id = posts.id").
		Where("post_categories.category_id = ? AND posts.created_at >= ?", categoryID, since).
		Order("posts.created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost edits a post inside one route namespace. Wrong namespace or a
// non-owning author are both ErrNotFound, matching the detail routes.
// Edits never re-trigger notification.
func (s *Store) UpdatePost(id string, postType string, authorID string, in UpdatePostInput) (*model.Post, error) {
	post, err := s.GetPost(id, postType)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, ErrNotFound
	}

	var categories []*model.Category
	if len(in.CategoryIDs) > 0 {
		ids := uniqueIds(in.CategoryIDs)
		if err := s.DB.Where("id IN ?", ids).Find(&categories).Error; err != nil {
			return nil, err
		}
		if len(categories) != len(ids) {
			return nil, ErrNotFound
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Updates(map[string]interface{}{
			"title":   in.Title,
			"content": in.Content,
		}).Error; err != nil {
			return err
		}
		if len(categories) > 0 {
			if err := tx.Model(post).Association("Categories").Replace(categories); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.Title = in.Title
	post.Content = in.Content
	return post, nil
}

// DeletePost removes a post together with its comments and category join
// rows, the cascading deletion from the owning entity.
func (s *Store) DeletePost(id string, postType string) error {
	post, err := s.GetPost(id, postType)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.Id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.Id).Delete(&model.PostCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
}

// VotePost applies one discrete vote event (+1 or -1) to the post rating.
func (s *Store) VotePost(id string, delta int) error {
	res := s.DB.Model(&model.Post{}).Where("id = ?", id).
		UpdateColumn("rating", gorm.Expr("rating + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
