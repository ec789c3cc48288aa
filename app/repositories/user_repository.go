package repositories

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// UserRepository is the credential store: it loads users with their roles.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) query(ctx context.Context) *orm.Query {
	return orm.On(r.db).WithContext(ctx).Model(&models.User{}).Preload("Roles")
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.query(ctx).Where("id = ?", id).First(&user)
	return user, translate(err, "user", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.query(ctx).Where("username = ?", username).First(&user)
	return user, translate(err, "user", username)
}

// UsernameTaken reports whether another user than exceptID uses username.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return r.taken(ctx, "username = ?", username, exceptID)
}

// EmailTaken compares emails ignoring case.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return r.taken(ctx, "LOWER(email) = ?", strings.ToLower(email), exceptID)
}

func (r *UserRepository) taken(ctx context.Context, cond string, value string, exceptID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.User{}).Where(cond, value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, wrap(err, "user taken")
}

// Create inserts user and links its roles, which must already exist.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Omit("Roles.*").Create(user).Error
	if isDuplicateKey(err) && strings.Contains(err.Error(), "email") {
		return apperror.Duplicate("email", user.Email)
	}
	return unique(err, "create user", "username", user.Username)
}

// Save persists scalar fields only. Usernames never change, so a unique
// violation here is the email.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	return unique(r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error, "save user", "email", user.Email)
}

func (r *UserRepository) ReplaceRoles(ctx context.Context, user *models.User, roles []models.Role) error {
	err := r.db.WithContext(ctx).Model(user).Omit("Roles.*").Association("Roles").Replace(roles)
	return wrap(err, "replace roles")
}

// Delete unlinks the user's roles and removes the user. Orders must be gone.
func (r *UserRepository) Delete(ctx context.Context, user *models.User) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(user).Association("Roles").Clear(); err != nil {
		return wrap(err, "clear roles")
	}
	return wrap(db.Delete(&models.User{}, user.ID).Error, "delete user")
}

func (r *UserRepository) All(ctx context.Context, page, limit int) ([]models.User, orm.Pagination, error) {
	var page0 []models.User
	p, err := orm.On(r.db).WithContext(ctx).Model(&models.User{}).Order("id").Paginate(&page0, page, limit)
	if err != nil || len(page0) == 0 {
		return page0, p, wrap(err, "list users")
	}

	ids := make([]uint, len(page0))
	for i, u := range page0 {
		ids[i] = u.ID
	}
	var users []models.User
	err = r.query(ctx).Where("id IN ?", ids).Order("id").Get(&users)
	return users, p, wrap(err, "list users")
}
