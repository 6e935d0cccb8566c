package store

import (
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateComment attaches a new comment to an existing post.
func (s *Store) CreateComment(postID string, userID string, text string) (*model.Comment, error) {
	var post model.Post
	if s.DB.Where("id = ?", postID).First(&post).RowsAffected == 0 {
		return nil, ErrNotFound
	}
	comment := &model.Comment{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		PostID:    postID,
		UserID:    userID,
		Text:      text,
	}
	if err := s.DB.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CommentsOfPost returns the post's comments, newest first.
func (s *Store) CommentsOfPost(postID string) ([]*model.Comment, error) {
	var post model.Post
	if s.DB.Where("id = ?", postID).First(&post).RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var comments []*model.Comment
	err := s.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at desc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// VoteComment applies one discrete vote event (+1 or -1) to the comment
// rating.
func (s *Store) VoteComment(id string, delta int) error {
	res := s.DB.Model(&model.Comment{}).Where("id = ?", id).
		UpdateColumn("rating", gorm.Expr("rating + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
