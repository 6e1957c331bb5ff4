package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
)

var _ output.UserRepository = (*UserRepository)(nil)

type userDoc struct {
	ID           string `bson:"_id"`
	FirstName    string `bson:"firstName"`
	LastName     string `bson:"lastName"`
	Email        string `bson:"email"`
	Mobile       string `bson:"mobile,omitempty"`
	PasswordHash string `bson:"passwordHash"`
}

type UserRepository struct {
	c *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = entities.NormalizeEmail(user.Email)
	_, err := r.c.InsertOne(ctx, userDoc{
		ID:           user.ID,
		FirstName:    user.Name.First,
		LastName:     user.Name.Last,
		Email:        user.Email,
		Mobile:       user.Mobile,
		PasswordHash: user.PasswordHash,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: email %s already registered", user.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"email": entities.NormalizeEmail(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entities.User, error) {
	var d userDoc
	if err := r.c.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &entities.User{
		ID:           d.ID,
		Name:         entities.Name{First: d.FirstName, Last: d.LastName},
		Email:        d.Email,
		Mobile:       d.Mobile,
		PasswordHash: d.PasswordHash,
	}, nil
}
