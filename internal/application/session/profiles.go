package session

import (
	"context"
	"errors"

	"mortgage-dashboard/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProfiles implements RoleLookup on the profiles table.
type GormProfiles struct{ DB *gorm.DB }

func (g *GormProfiles) ProfileRole(ctx context.Context, userID string) (string, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", nil
	}
	var p domain.Profile
	if err := g.DB.WithContext(ctx).Select("role").Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if p.Role == nil {
		return "", nil
	}
	return *p.Role, nil
}
