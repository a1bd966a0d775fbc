package store

import (
	"errors"

	"gorm.io/gorm"

	"pneumoscan-server/internal/models"
)

// UserStore owns the users table. Users are created at signup and immutable
// afterwards.
type UserStore struct {
	DB *gorm.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

// CreateUser registers a new user with a bcrypt-hashed password. A taken
// username is ErrDuplicateUsername, surfaced to the user as a validation
// message rather than a server failure.
func (s *UserStore) CreateUser(username, password string, role models.Role, name, email string) (*models.User, error) {
	var existing models.User
	err := s.DB.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateUsername
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr("create user: check username", err)
	}

	user := models.User{
		Username: username,
		Role:     role,
		Name:     name,
		Email:    email,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, storageErr("create user: hash password", err)
	}

	if err := s.DB.Create(&user).Error; err != nil {
		return nil, storageErr("create user", err)
	}
	return &user, nil
}

// Authenticate verifies a username/password pair and returns the identity.
// Both unknown usernames and wrong passwords are ErrInvalidCredentials so
// the response does not leak which half was wrong.
func (s *UserStore) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr("authenticate", err)
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// FindByID fetches a user by primary key.
func (s *UserStore) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, storageErr("find user", err)
	}
	return &user, nil
}
