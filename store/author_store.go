package store

import (
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/google/uuid"
)

// GetOrCreateAuthor returns the author identity for the user, creating it on
// first use. Becoming an author is idempotent.
func (s *Store) GetOrCreateAuthor(userID string) (*model.Author, error) {
	var author model.Author
	res := s.DB.Where("user_id = ?", userID).First(&author)
	if res.Error == nil && res.RowsAffected == 1 {
		return &author, nil
	}

	var user model.User
	if s.DB.Where("id = ?", userID).First(&user).RowsAffected == 0 {
		return nil, ErrNotFound
	}

	author = model.Author{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		UserID:    userID,
	}
	if err := s.DB.Create(&author).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

// GetAuthor returns the author with the given id.
func (s *Store) GetAuthor(id string) (*model.Author, error) {
	var author model.Author
	res := s.DB.Preload("User").Where("id = ?", id).First(&author)
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &author, nil
}

// RecomputeAuthorRating rebuilds the derived author rating from scratch:
// post ratings weighted x3, plus ratings of comments the author's user
// wrote, plus ratings of comments left on the author's posts.
// The stored value is stale between recomputations.
func (s *Store) RecomputeAuthorRating(authorID string) (*model.Author, error) {
	author, err := s.GetAuthor(authorID)
	if err != nil {
		return nil, err
	}

	var postRating int
	if err := s.DB.Model(&model.Post{}).
		Where("author_id = ?", authorID).
		Select("COALESCE(SUM(rating), 0)").
		Scan(&postRating).Error; err != nil {
		return nil, err
	}

	var commentRating int
	if err := s.DB.Model(&model.Comment{}).
		Where("user_id = ?", author.UserID).
		Select("COALESCE(SUM(rating), 0)").
		Scan(&commentRating).Error; err != nil {
		return nil, err
	}

	var postCommentRating int
	if err := s.DB.Model(&model.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.author_id = ?", authorID).
		Select("COALESCE(SUM(comments.rating), 0)").
		Scan(&postCommentRating).Error; err != nil {
		return nil, err
	}

	author.Rating = postRating*3 + commentRating + postCommentRating
	if err := s.DB.Model(author).UpdateColumn("rating", author.Rating).Error; err != nil {
		return nil, err
	}
	return author, nil
}
