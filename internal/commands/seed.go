package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"volunteerhub/internal/application"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
)

// SeedUser is one entry of a users seed file.
type SeedUser struct {
	ID        string `yaml:"id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Mobile    string `yaml:"mobile"`
	// Password is plain text; it is hashed before storage.
	Password string `yaml:"password"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedFile parses a YAML document of the form:
//
//	users:
//	  - email: ada@example.com
//	    first_name: Ada
//	    password: secret1
func LoadSeedFile(path string) ([]SeedUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeSeed(f)
}

func decodeSeed(r io.Reader) ([]SeedUser, error) {
	var doc seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, u := range doc.Users {
		if entities.NormalizeEmail(u.Email) == "" {
			return nil, fmt.Errorf("seed user %d: email is required", i+1)
		}
		if len(u.Password) < 6 {
			return nil, fmt.Errorf("seed user %s: password must be at least 6 characters", u.Email)
		}
	}
	return doc.Users, nil
}

// SeedUsers inserts users that are not registered yet. Existing emails are
// left untouched. It returns how many users were created.
func SeedUsers(ctx context.Context, repo output.UserRepository, users []SeedUser, log *zap.Logger) (int, error) {
	created := 0
	for _, su := range users {
		if _, err := repo.FindByEmail(ctx, su.Email); err == nil {
			log.Info("seed user exists, skipping", zap.String("email", su.Email))
			continue
		}
		hash, err := application.HashPassword(su.Password)
		if err != nil {
			return created, err
		}
		u := &entities.User{
			ID:           su.ID,
			Name:         entities.Name{First: su.FirstName, Last: su.LastName},
			Email:        su.Email,
			Mobile:       su.Mobile,
			PasswordHash: hash,
		}
		if err := repo.Create(ctx, u); err != nil {
			return created, fmt.Errorf("seed %s: %w", su.Email, err)
		}
		log.Info("seed user created", zap.String("email", u.Email), zap.String("user_id", u.ID))
		created++
	}
	return created, nil
}
