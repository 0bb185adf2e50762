package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/internal/profanity"
	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByLogin(ctx context.Context, identifier string) (types.User, error)
	ListByUsernames(ctx context.Context, names []string) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetAdmin(ctx context.Context, id int, isAdmin bool) error
	Suspend(ctx context.Context, id int, until time.Time, reason string) error
	ClearSuspension(ctx context.Context, id int) error
	Mute(ctx context.Context, id int, until time.Time) error
	ClearMute(ctx context.Context, id int) error
	ReservePost(ctx context.Context, id int, kind types.PostKind, now time.Time, cooldown time.Duration) (bool, error)
	Delete(ctx context.Context, id int) error
	ListAdmins(ctx context.Context) ([]types.UserSummary, error)
	Search(ctx context.Context, term string, limit int) ([]types.UserSummary, error)
}

const (
	msgInvalidCredentials = "Mail adresi/kullanıcı adı veya şifre hatalı"
	msgInvalidSession     = "Oturum geçersiz, lütfen tekrar giriş yapın"
	msgEmailTaken         = "Bu e-posta adresi zaten kullanılıyor"
	msgUsernameTaken      = "Bu kullanıcı adı zaten kullanılıyor"
	msgUsernameProfane    = "Kullanıcı adı uygunsuz kelime içeriyor"
	msgPasswordTooLong    = "Şifre en fazla 72 bayt olabilir"
)

// RegisterInput is the payload of a sign-up request.
type RegisterInput struct {
	Username   string `json:"username" validate:"required,min=3,max=30,username"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,min=6,max=72,maxbytes=72"`
	University string `json:"university" validate:"required,max=200"`
	Faculty    string `json:"faculty" validate:"required,max=200"`
	Department string `json:"department" validate:"required,max=200"`
}

// LoginInput is the payload of a login request.
type LoginInput struct {
	EmailOrUsername string `json:"email_or_username" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// AdminSeed describes the default administrator account.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// UserService encapsulates account use-cases: sign-up, login and session resolution.
type UserService struct {
	repo UserRepository
	now  func() time.Time
	cost int
}

func NewUserService(repo UserRepository, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{repo: repo, now: now, cost: bcrypt.DefaultCost}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, ErrNotFound(msgUserNotFound)
	}
	return user, err
}

// Register creates a student account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.University = strings.TrimSpace(in.University)
	in.Faculty = strings.TrimSpace(in.Faculty)
	in.Department = strings.TrimSpace(in.Department)
	if err := validate(in); err != nil {
		return types.User{}, err
	}

	if match, found := profanity.Check(in.Username); found {
		observability.ProfanityRejectionsTotal.WithLabelValues("username", string(match.Category)).Inc()
		return types.User{}, ErrValidation(msgUsernameProfane)
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return types.User{}, ErrConflict(msgEmailTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}
	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return types.User{}, ErrConflict(msgUsernameTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	return s.create(ctx, types.User{
		Username:   in.Username,
		Email:      in.Email,
		University: in.University,
		Faculty:    in.Faculty,
		Department: in.Department,
	}, in.Password)
}

func (s *UserService) create(ctx context.Context, user types.User, password string) (types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return types.User{}, &Error{
				Kind:    KindValidation,
				Message: msgPasswordTooLong,
				Fields:  map[string]string{"password": msgPasswordTooLong},
			}
		}
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			if conflict.Constraint == store.ConstraintEmail {
				return types.User{}, ErrConflict(msgEmailTaken)
			}
			return types.User{}, ErrConflict(msgUsernameTaken)
		}
		return types.User{}, err
	}
	return created, nil
}

// Authenticate checks credentials. Suspended accounts cannot log in.
func (s *UserService) Authenticate(ctx context.Context, in LoginInput) (types.User, error) {
	in.EmailOrUsername = strings.TrimSpace(in.EmailOrUsername)
	if err := validate(in); err != nil {
		return types.User{}, err
	}

	user, err := s.repo.GetByLogin(ctx, in.EmailOrUsername)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthorized(msgInvalidCredentials)
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return types.User{}, ErrUnauthorized(msgInvalidCredentials)
	}

	return s.checkModeration(ctx, user)
}

// Resolve loads the user behind a session and applies moderation state.
func (s *UserService) Resolve(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthorized(msgInvalidSession)
		}
		return types.User{}, err
	}
	return s.checkModeration(ctx, user)
}

// checkModeration rejects active suspensions and clears expired suspensions and mutes.
func (s *UserService) checkModeration(ctx context.Context, user types.User) (types.User, error) {
	now := s.now()

	if user.SuspendedAt(now) {
		reason := user.SuspendReason
		if strings.TrimSpace(reason) == "" {
			reason = "Belirtilmedi"
		}
		return types.User{}, ErrForbidden(fmt.Sprintf("Hesabınız askıya alınmış. Askı süresi: %s - Sebep: %s",
			FormatDisplayTime(*user.SuspendUntil), reason))
	}
	if user.IsSuspended {
		if err := s.repo.ClearSuspension(ctx, user.ID); err != nil {
			slog.WarnContext(ctx, "failed to clear expired suspension", "user_id", user.ID, "error", err)
		}
		user.IsSuspended = false
		user.SuspendUntil = nil
		user.SuspendReason = ""
	}

	if user.IsMuted && !user.MutedAt(now) {
		if err := s.repo.ClearMute(ctx, user.ID); err != nil {
			slog.WarnContext(ctx, "failed to clear expired mute", "user_id", user.ID, "error", err)
		}
		user.IsMuted = false
		user.MuteUntil = nil
	}
	return user, nil
}

// EnsureAdmin creates the default administrator, or promotes the existing
// account with the same username or email. It reports whether an account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, seed AdminSeed) (types.User, bool, error) {
	if strings.TrimSpace(seed.Password) == "" {
		return types.User{}, false, errors.New("admin password is required")
	}

	existing, err := s.repo.GetByUsername(ctx, seed.Username)
	if errors.Is(err, store.ErrNotFound) {
		existing, err = s.repo.GetByEmail(ctx, seed.Email)
	}
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := s.repo.SetAdmin(ctx, existing.ID, true); err != nil {
				return types.User{}, false, err
			}
			existing.IsAdmin = true
		}
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return types.User{}, false, err
	}

	created, err := s.create(ctx, types.User{
		Username:   seed.Username,
		Email:      seed.Email,
		University: "Sistem",
		Faculty:    "Yönetim",
		Department: "Admin",
		IsAdmin:    true,
	}, seed.Password)
	if err != nil {
		return types.User{}, false, err
	}
	return created, true, nil
}

// Promote grants admin rights to the named user.
func (s *UserService) Promote(ctx context.Context, username string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrNotFound(msgUserNotFound)
		}
		return types.User{}, err
	}
	if user.IsAdmin {
		return user, nil
	}
	if err := s.repo.SetAdmin(ctx, user.ID, true); err != nil {
		return types.User{}, err
	}
	user.IsAdmin = true
	return user, nil
}
