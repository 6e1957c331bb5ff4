package jsonstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
)

var _ output.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *entities.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = entities.NormalizeEmail(user.Email)
	return r.s.mutate(func(doc *document) error {
		for _, u := range doc.Users {
			if u.ID == user.ID {
				return fmt.Errorf("create user: duplicate id %s", user.ID)
			}
			if entities.NormalizeEmail(u.Email) == user.Email {
				return fmt.Errorf("create user: email %s already registered", user.Email)
			}
		}
		doc.Users = append(doc.Users, toRecord(*user))
		return nil
	})
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entities.User, error) {
	return r.find(func(u userRecord) bool { return u.ID == id })
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	email = entities.NormalizeEmail(email)
	return r.find(func(u userRecord) bool { return entities.NormalizeEmail(u.Email) == email })
}

func (r *UserRepository) find(match func(userRecord) bool) (*entities.User, error) {
	var (
		out   entities.User
		found bool
	)
	r.s.read(func(doc *document) {
		for _, u := range doc.Users {
			if match(u) {
				out = u.toDomain()
				found = true
				return
			}
		}
	})
	if !found {
		return nil, domain.ErrUserNotFound
	}
	return &out, nil
}

func toRecord(u entities.User) userRecord {
	return userRecord{ID: u.ID, Name: u.Name, Email: u.Email, Mobile: u.Mobile, Password: u.PasswordHash}
}

func (u userRecord) toDomain() entities.User {
	return entities.User{ID: u.ID, Name: u.Name, Email: u.Email, Mobile: u.Mobile, PasswordHash: u.Password}
}
