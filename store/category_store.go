package store

import (
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// GetCategory returns the category with the given id, ErrNotFound when the
// id doesn't resolve.
func (s *Store) GetCategory(id string) (*model.Category, error) {
	var category model.Category
	res := s.DB.Where("id = ?", id).First(&category)
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &category, nil
}

// AllCategories returns every category, used by the digest pipeline which
// walks all of them per run.
func (s *Store) AllCategories() ([]*model.Category, error) {
	var categories []*model.Category
	if err := s.DB.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListCategories returns one page of categories ordered by name.
func (s *Store) ListCategories(limit int, offset int) ([]*model.Category, error) {
	var categories []*model.Category
	if err := s.DB.Order("name asc").Limit(limit).Offset(offset).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory creates a category with a unique name.
func (s *Store) CreateCategory(name string) (*model.Category, error) {
	category := model.Category{
		Id:        uuid.New().String(),
		CreatedAt: time.Now(),
		Name:      name,
	}
	if err := s.DB.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Subscribe registers the user for notifications on the category. Subscribing
// twice is a no-op, the join table's composite primary key plus ON CONFLICT
// DO NOTHING make the operation idempotent.
func (s *Store) Subscribe(categoryID string, userID string) error {
	if _, err := s.GetCategory(categoryID); err != nil {
		return err
	}
	sub := model.CategorySubscription{
		UserID:     userID,
		CategoryID: categoryID,
		CreatedAt:  time.Now(),
	}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error
}

// Unsubscribe removes the user's subscription. Unsubscribing a non-member is
// a no-op, not an error.
func (s *Store) Unsubscribe(categoryID string, userID string) error {
	if _, err := s.GetCategory(categoryID); err != nil {
		return err
	}
	return s.DB.
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Delete(&model.CategorySubscription{}).Error
}

// SubscribersOf returns the current subscriber set of the category, order
// irrelevant.
func (s *Store) SubscribersOf(categoryID string) ([]*model.User, error) {
	if _, err := s.GetCategory(categoryID); err != nil {
		return nil, err
	}
	var users []*model.User
	err := s.DB.Model(&model.User{}).
		Joins("JOIN category_subscriptions ON category_subscriptions.user_id = users.id").
		Where("category_subscriptions.category_id = ?", categoryID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
