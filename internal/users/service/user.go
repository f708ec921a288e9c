package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	userserrors "resort/internal/users/errors"
	"resort/internal/users/repository"
	"resort/internal/users/validator"
	"resort/pkg/auth"
	"resort/pkg/config"
	mongotx "resort/pkg/db/mongo"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"
	"resort/pkg/sanitizer"
	"resort/pkg/validation"
)

// OwnerDetacher clears booking ownership when a user is removed. It runs
// inside the user deletion transaction.
type OwnerDetacher interface {
	DetachOwner(ctx context.Context, userID int64) error
}

type UserService interface {
	// Register creates an account. The requested role is honoured only when
	// caller is an admin; everyone else becomes a client.
	Register(ctx context.Context, req *model.RegisterRequest, caller *model.Actor) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Get(ctx context.Context, id int64, actor model.Actor) (*model.User, error)
	List(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error)
	Update(ctx context.Context, id int64, update *model.UserUpdate, actor model.Actor) (*model.User, error)
	Delete(ctx context.Context, id int64, actor model.Actor) error
	ResolveActor(ctx context.Context, userID int64) (model.Actor, error)
	SeedAdmin(ctx context.Context, email, password string) error
}

type userService struct {
	repo      repository.UserRepository
	hasher    auth.PasswordHasher
	tokens    auth.TokenIssuer
	bookings  OwnerDetacher
	txManager mongotx.TransactionManager
	validator *validator.UserValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewUserService(
	repo repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	bookings OwnerDetacher,
	txManager mongotx.TransactionManager,
	validator *validator.UserValidator,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		bookings:  bookings,
		txManager: txManager,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest, caller *model.Actor) (*model.User, error) {
	log := s.cfg.Log.FromContext(ctx)

	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.FirstName = sanitizer.NormalizeName(req.FirstName)
	req.LastName = sanitizer.NormalizeName(req.LastName)
	req.Role = sanitizer.NormalizeLabel(req.Role)

	if err := s.validator.ValidateRegister(req); err != nil {
		return nil, s.validationError(ctx, err, "Registration validation failed")
	}

	role := model.RoleClient
	if req.Role != "" {
		if caller != nil && caller.IsAdmin() {
			role = model.Role(req.Role)
		} else if model.Role(req.Role) != model.RoleClient {
			log.Warn("Ignoring requested role from non-admin caller", "email", req.Email, "role", req.Role)
		}
	}

	return s.create(ctx, req.Email, req.Password, req.FirstName, req.LastName, role)
}

func (s *userService) create(ctx context.Context, email, password, firstName, lastName string, role model.Role) (*model.User, error) {
	log := s.cfg.Log.FromContext(ctx)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("Email already registered")
	} else if !errors.Is(err, userserrors.ErrNotFound) {
		log.Error("Failed to check email", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("Failed to hash password", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		log.Error("Failed to allocate user id", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &model.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, s.mapRepoError(ctx, err, id, "Failed to register user")
	}

	log.Info("User registered successfully", "id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	log := s.cfg.Log.FromContext(ctx)

	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, s.validationError(ctx, err, "Login validation failed")
	}

	invalid := apperrors.Unauthorized("Incorrect email or password")

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			log.Warn("Login failed: unknown email")
			return nil, invalid
		}
		log.Error("Failed to load user for login", "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Warn("Login failed: wrong password", "id", user.ID)
			return nil, invalid
		}
		log.Error("Failed to verify password", "id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		log.Error("Failed to issue token", "id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to log in", err)
	}

	log.Info("User logged in", "id", user.ID)
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *userService) Get(ctx context.Context, id int64, actor model.Actor) (*model.User, error) {
	if !actor.CanManage(&id) {
		return nil, apperrors.Forbidden("Not enough permissions to view this user")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err, id, "Failed to retrieve user")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error) {
	log := s.cfg.Log.FromContext(ctx)

	var (
		users             []*model.User
		total             int64
		errFind, errCount error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		users, errFind = s.repo.FindAll(ctx, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, errCount = s.repo.Count(ctx)
	}()
	wg.Wait()

	if errFind != nil {
		log.Error("Failed to list users", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to retrieve users", errFind)
	}
	if errCount != nil {
		log.Error("Failed to count users", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count users", errCount)
	}
	return users, total, nil
}

func (s *userService) Update(ctx context.Context, id int64, update *model.UserUpdate, actor model.Actor) (*model.User, error) {
	log := s.cfg.Log.FromContext(ctx)

	if !actor.CanManage(&id) {
		return nil, apperrors.Forbidden("Not enough permissions to update this user")
	}
	if update.Role != nil && !actor.IsAdmin() {
		log.Warn("Role change forbidden", "id", id, "actor_id", actor.UserID)
		return nil, apperrors.Forbidden("Only administrators can change roles")
	}

	if update.FirstName != nil {
		v := sanitizer.NormalizeName(*update.FirstName)
		update.FirstName = &v
	}
	if update.LastName != nil {
		v := sanitizer.NormalizeName(*update.LastName)
		update.LastName = &v
	}
	if update.Role != nil {
		v := sanitizer.NormalizeLabel(*update.Role)
		update.Role = &v
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, s.validationError(ctx, err, "User validation failed")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, err, id, "Failed to retrieve user")
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Role != nil {
		user.Role = model.Role(*update.Role)
	}
	if update.Password != nil {
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			log.Error("Failed to hash password", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to update user", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, s.mapRepoError(ctx, err, id, "Failed to update user")
	}

	log.Info("User updated successfully", "id", id, "actor_id", actor.UserID)
	return user, nil
}

// Delete removes the user and detaches their bookings in one transaction.
// The bookings keep their contact email so a later account with the same
// email still sees them.
func (s *userService) Delete(ctx context.Context, id int64, actor model.Actor) error {
	log := s.cfg.Log.FromContext(ctx)

	if !actor.IsAdmin() {
		return apperrors.Forbidden("Administrator role required")
	}
	if actor.UserID == id {
		return apperrors.Conflict("Administrators cannot delete their own account")
	}

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			if errors.Is(err, userserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("User", strconv.FormatInt(id, 10))
			}
			return err
		}
		return s.bookings.DetachOwner(txCtx, id)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		log.Error("Failed to delete user", "id", id, "error", err)
		return apperrors.Internal("Failed to delete user", err)
	}

	log.Info("User deleted successfully", "id", id, "actor_id", actor.UserID)
	return nil
}

func (s *userService) ResolveActor(ctx context.Context, userID int64) (model.Actor, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return model.Actor{}, s.mapRepoError(ctx, err, userID, "Failed to resolve user")
	}
	return user.Actor(), nil
}

// SeedAdmin makes sure an administrator with email exists. An existing
// account with that email is promoted; its password is left alone.
func (s *userService) SeedAdmin(ctx context.Context, email, password string) error {
	log := s.cfg.Log.FromContext(ctx)
	email = sanitizer.NormalizeEmail(email)

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == model.RoleAdmin {
			log.Info("Admin account already present", "id", existing.ID)
			return nil
		}
		existing.Role = model.RoleAdmin
		if err := s.repo.Update(ctx, existing); err != nil {
			return s.mapRepoError(ctx, err, existing.ID, "Failed to promote admin")
		}
		log.Info("Promoted existing account to admin", "id", existing.ID)
		return nil
	case !errors.Is(err, userserrors.ErrNotFound):
		return apperrors.Internal("Failed to look up admin account", err)
	}

	if password == "" {
		return validation.Field("password", "admin password is required").AppError("Admin seed validation failed")
	}

	user, err := s.create(ctx, email, password, "Admin", "Admin", model.RoleAdmin)
	if err != nil {
		return err
	}
	log.Info("Admin account created", "id", user.ID)
	return nil
}

// --- Helpers ---

func (s *userService) mapRepoError(ctx context.Context, err error, id int64, message string) error {
	switch {
	case errors.Is(err, userserrors.ErrNotFound):
		return apperrors.NotFoundWithID("User", strconv.FormatInt(id, 10))
	case errors.Is(err, userserrors.ErrEmailTaken):
		return apperrors.Conflict("Email already registered")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.FromContext(ctx).Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *userService) validationError(ctx context.Context, err error, message string) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		s.cfg.Log.FromContext(ctx).Warn(message, "error", err)
		return verrs.AppError(message)
	}
	return apperrors.Internal(message, err)
}
