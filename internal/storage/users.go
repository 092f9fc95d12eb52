package storage

import (
	"context"

	"github.com/jacobmartinez3d/log2sql/internal/models"
)

// FindUserByAlias returns the first user with alias, or nil when there is none.
func (g *Gateway) FindUserByAlias(ctx context.Context, alias string) (*models.User, error) {
	var user models.User
	found, err := g.Query(ctx, &models.User{}, Filter{"alias": alias}).First(&user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts user and assigns its id.
func (g *Gateway) CreateUser(ctx context.Context, user *models.User) error {
	return g.Create(ctx, user)
}

// ListUsers returns every user ordered by id.
func (g *Gateway) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := g.Query(ctx, &models.User{}, nil).Find(&users); err != nil {
		return nil, err
	}
	return users, nil
}
