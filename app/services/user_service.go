package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type CreateUserInput struct {
	Username  string `json:"username"   validate:"required,alphanum,min=3,max=50"`
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=6,max=72"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
	Address   string `json:"address"    validate:"max=255"`
	// Admin asks for the ADMIN role. Only an existing admin may grant it,
	// except for the very first account.
	Admin bool `json:"admin"`
}

// UpdateUserInput changes only the fields that are set.
type UpdateUserInput struct {
	Email     *string `json:"email"      validate:"omitempty,email,max=255"`
	Password  *string `json:"password"   validate:"omitempty,min=6,max=72"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=100"`
	Address   *string `json:"address"    validate:"omitempty,max=255"`
	Enabled   *bool   `json:"enabled"`
	Admin     *bool   `json:"admin"`
}

type UserService struct {
	db     *gorm.DB
	users  *repositories.UserRepository
	roles  *repositories.RoleRepository
	orders *repositories.OrderRepository
	events *event.Dispatcher
}

func NewUserService(db *gorm.DB, events *event.Dispatcher) *UserService {
	return &UserService{
		db:     db,
		users:  repositories.NewUserRepository(db),
		roles:  repositories.NewRoleRepository(db),
		orders: repositories.NewOrderRepository(db),
		events: events,
	}
}

// Register creates an account. The first account in an install without any
// admin becomes ADMIN. After that, ADMIN is granted only when the actor is
// an admin according to the store, not according to its token.
func (s *UserService) Register(ctx context.Context, actor auth.Principal, in CreateUserInput) (models.User, error) {
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, apperror.Unexpected("hash password", err)
	}

	user := models.User{
		Username:  in.Username,
		Email:     strings.TrimSpace(in.Email),
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Address:   in.Address,
		Enabled:   true,
	}

	var bootstrap bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		roles := s.roles.WithTx(tx)

		if taken, err := users.UsernameTaken(ctx, user.Username, 0); err != nil {
			return err
		} else if taken {
			return apperror.Duplicate("username", user.Username)
		}
		if taken, err := users.EmailTaken(ctx, user.Email, 0); err != nil {
			return err
		} else if taken {
			return apperror.Duplicate("email", user.Email)
		}

		adminExists, err := roles.AdminExists(ctx)
		if err != nil {
			return err
		}
		grantAdmin := !adminExists
		bootstrap = grantAdmin
		if adminExists && in.Admin {
			if err := s.requireStoredAdmin(ctx, users, actor); err != nil {
				return err
			}
			grantAdmin = true
		}

		userRole, err := roles.Ensure(ctx, models.RoleUser)
		if err != nil {
			return err
		}
		user.Roles = []models.Role{userRole}
		if grantAdmin {
			adminRole, err := roles.Ensure(ctx, models.RoleAdmin)
			if err != nil {
				return err
			}
			user.Roles = append(user.Roles, adminRole)
		}
		return users.Create(ctx, &user)
	})
	if err != nil {
		return models.User{}, err
	}

	logger.WithCtx(ctx).Info("user registered", "username", user.Username, "roles", user.RoleNames(), "bootstrap", bootstrap)
	return s.users.FindByID(ctx, user.ID)
}

func (s *UserService) requireStoredAdmin(ctx context.Context, users *repositories.UserRepository, actor auth.Principal) error {
	if !actor.Authenticated() {
		return apperror.Forbidden("only an admin may create admin accounts")
	}
	stored, err := users.FindByUsername(ctx, actor.Username)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return apperror.Forbidden("only an admin may create admin accounts")
		}
		return err
	}
	if !stored.IsAdmin() {
		return apperror.Forbidden("only an admin may create admin accounts")
	}
	return nil
}

func (s *UserService) List(ctx context.Context, actor auth.Principal, page, limit int) ([]models.User, orm.Pagination, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, orm.Pagination{}, err
	}
	return s.users.All(ctx, page, limit)
}

// Get returns user id to that user or to an admin.
func (s *UserService) Get(ctx context.Context, actor auth.Principal, id uint) (models.User, error) {
	if err := requireAuthenticated(actor); err != nil {
		return models.User{}, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound && !actor.IsAdmin() {
			return models.User{}, apperror.Forbidden("not allowed to access another user's data")
		}
		return models.User{}, err
	}
	if err := selfOrAdmin(actor, user.Username); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) Update(ctx context.Context, actor auth.Principal, id uint, in UpdateUserInput) (models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return models.User{}, err
	}
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		roles := s.roles.WithTx(tx)

		user, err := users.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Email != nil {
			email := strings.TrimSpace(*in.Email)
			if !strings.EqualFold(email, user.Email) {
				taken, err := users.EmailTaken(ctx, email, user.ID)
				if err != nil {
					return err
				}
				if taken {
					return apperror.Duplicate("email", email)
				}
			}
			user.Email = email
		}
		if in.FirstName != nil {
			user.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			user.LastName = *in.LastName
		}
		if in.Address != nil {
			user.Address = *in.Address
		}
		if in.Enabled != nil {
			user.Enabled = *in.Enabled
		}
		if in.Password != nil {
			hash, err := auth.HashPassword(*in.Password)
			if err != nil {
				return apperror.Unexpected("hash password", err)
			}
			user.Password = hash
		}
		if err := users.Save(ctx, &user); err != nil {
			return err
		}

		if in.Admin == nil || *in.Admin == user.IsAdmin() {
			return nil
		}
		userRole, err := roles.Ensure(ctx, models.RoleUser)
		if err != nil {
			return err
		}
		next := []models.Role{userRole}
		if *in.Admin {
			adminRole, err := roles.Ensure(ctx, models.RoleAdmin)
			if err != nil {
				return err
			}
			next = append(next, adminRole)
		}
		return users.ReplaceRoles(ctx, &user, next)
	})
	if err != nil {
		return models.User{}, err
	}
	return s.users.FindByID(ctx, id)
}

// Delete removes the user together with its orders and order lines in one
// transaction. Roles themselves are kept.
func (s *UserService) Delete(ctx context.Context, actor auth.Principal, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	var (
		user   models.User
		orders int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		var err error
		user, err = users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		ids, err := orderRepo.IDsByUser(ctx, id)
		if err != nil {
			return err
		}
		if err := orderRepo.DeleteLinesOfOrders(ctx, ids); err != nil {
			return err
		}
		if err := orderRepo.Delete(ctx, ids); err != nil {
			return err
		}
		orders = len(ids)
		return users.Delete(ctx, &user)
	})
	if err != nil {
		return err
	}

	logger.WithCtx(ctx).Info("user deleted", "username", user.Username, "orders", orders)
	s.events.Fire(EventUserDeleted, UserDeleted{UserID: user.ID, Username: user.Username, Orders: orders})
	return nil
}
