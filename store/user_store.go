package store

import (
	"time"

	"github.com/Luismorlan/newsportal/model"
)

// CreateUser registers a user identity. Id is caller provided since identity
// comes from the auth provider, not from this service.
func (s *Store) CreateUser(id string, name string, email string) (*model.User, error) {
	user := &model.User{
		Id:        id,
		CreatedAt: time.Now(),
		Name:      name,
		Email:     email,
	}
	if err := s.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(id string) (*model.User, error) {
	var user model.User
	res := s.DB.Where("id = ?", id).First(&user)
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &user, nil
}
