package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) WithTx(tx *gorm.DB) *RoleRepository {
	return &RoleRepository{db: tx}
}

// Ensure returns the role called name, creating it when missing.
func (r *RoleRepository) Ensure(ctx context.Context, name string) (models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where(models.Role{Name: name}).FirstOrCreate(&role).Error
	return role, wrap(err, "ensure role")
}

// AdminExists reports whether any user holds the ADMIN role.
func (r *RoleRepository) AdminExists(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", models.RoleAdmin).
		Count(&count).Error
	return count > 0, wrap(err, "admin exists")
}
