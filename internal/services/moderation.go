package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unisoruyor/apiserver/internal/profanity"
	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
)

const (
	msgSelfModeration = "Kendi hesabınız üzerinde bu işlemi yapamazsınız"
	searchMinRunes    = 2
	searchLimit       = 20
)

// SuspendInput is the payload of a suspension.
type SuspendInput struct {
	SuspendDays int    `json:"suspend_days" validate:"required,min=1,max=3650"`
	Reason      string `json:"reason" validate:"required,notblank,max=500"`
}

// MuteInput is the payload of a mute.
type MuteInput struct {
	MuteHours int `json:"mute_hours"`
}

// WarnInput is the payload of a warning.
type WarnInput struct {
	WarningMessage string `json:"warning_message"`
}

// ModerationResult is returned by admin actions.
type ModerationResult struct {
	Message string `json:"message"`
	User    string `json:"user,omitempty"`
}

// ModerationService implements the admin panel actions.
type ModerationService struct {
	users         UserRepository
	questions     QuestionRepository
	answers       AnswerRepository
	notifications *NotificationService
	now           func() time.Time
}

func NewModerationService(
	users UserRepository,
	questions QuestionRepository,
	answers AnswerRepository,
	notifications *NotificationService,
	now func() time.Time,
) *ModerationService {
	if now == nil {
		now = time.Now
	}
	return &ModerationService{
		users:         users,
		questions:     questions,
		answers:       answers,
		notifications: notifications,
		now:           now,
	}
}

func (s *ModerationService) target(ctx context.Context, id int) (types.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrNotFound(msgUserNotFound)
		}
		return types.User{}, err
	}
	return user, nil
}

func (s *ModerationService) destructiveTarget(ctx context.Context, admin types.User, id int) (types.User, error) {
	if admin.ID == id {
		return types.User{}, ErrValidation(msgSelfModeration)
	}
	return s.target(ctx, id)
}

func notFoundAsUser(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound(msgUserNotFound)
	}
	return err
}

// notify masks blocked words, since admin text may quote the offending post.
func (s *ModerationService) notify(ctx context.Context, admin types.User, recipient int, kind types.NotificationType, title, message string) {
	s.notifications.Notify(ctx, types.Notification{
		UserID:       recipient,
		Type:         kind,
		Title:        title,
		Message:      profanity.Mask(message),
		FromUserID:   intPtr(admin.ID),
		FromUsername: admin.Username,
	})
}

func (s *ModerationService) MakeAdmin(ctx context.Context, admin types.User, id int) (ModerationResult, error) {
	user, err := s.target(ctx, id)
	if err != nil {
		return ModerationResult{}, err
	}
	if !user.IsAdmin {
		if err := s.users.SetAdmin(ctx, id, true); err != nil {
			return ModerationResult{}, notFoundAsUser(err)
		}
	}
	slog.InfoContext(ctx, "user promoted to admin", "target_id", id, "admin_id", admin.ID)
	return ModerationResult{Message: fmt.Sprintf("%s admin yapıldı", user.Username), User: user.Username}, nil
}

// Suspend blocks the user for the given number of days. A new suspension
// replaces the previous expiry.
func (s *ModerationService) Suspend(ctx context.Context, admin types.User, id int, in SuspendInput) (ModerationResult, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validate(in); err != nil {
		return ModerationResult{}, err
	}
	user, err := s.destructiveTarget(ctx, admin, id)
	if err != nil {
		return ModerationResult{}, err
	}

	until := s.now().UTC().Add(time.Duration(in.SuspendDays) * 24 * time.Hour)
	if err := s.users.Suspend(ctx, id, until, in.Reason); err != nil {
		return ModerationResult{}, notFoundAsUser(err)
	}

	s.notify(ctx, admin, id, types.NotificationSuspend, "Hesabınız askıya alındı",
		fmt.Sprintf("Hesabınız %d gün süreyle askıya alınmıştır. Sebep: %s. Askı süresi: %s",
			in.SuspendDays, in.Reason, FormatDisplayTime(until)))
	slog.InfoContext(ctx, "user suspended", "target_id", id, "admin_id", admin.ID, "until", until)

	return ModerationResult{Message: fmt.Sprintf("Kullanıcı %d gün askıya alındı", in.SuspendDays), User: user.Username}, nil
}

func (s *ModerationService) Unsuspend(ctx context.Context, admin types.User, id int) (ModerationResult, error) {
	user, err := s.target(ctx, id)
	if err != nil {
		return ModerationResult{}, err
	}
	if err := s.users.ClearSuspension(ctx, id); err != nil {
		return ModerationResult{}, notFoundAsUser(err)
	}

	s.notify(ctx, admin, id, types.NotificationUnsuspend, "Hesabınızın askısı kaldırıldı",
		"Hesabınızın askısı kaldırılmıştır. Artık normal şekilde platform kullanabilirsiniz.")
	return ModerationResult{Message: "Kullanıcının askısı kaldırıldı", User: user.Username}, nil
}

// Mute blocks content creation for the given number of hours.
func (s *ModerationService) Mute(ctx context.Context, admin types.User, id int, in MuteInput) (ModerationResult, error) {
	if in.MuteHours < 1 || in.MuteHours > 24*365 {
		return ModerationResult{}, ErrValidation("Geçerli bir saat sayısı girin")
	}
	user, err := s.destructiveTarget(ctx, admin, id)
	if err != nil {
		return ModerationResult{}, err
	}

	until := s.now().UTC().Add(time.Duration(in.MuteHours) * time.Hour)
	if err := s.users.Mute(ctx, id, until); err != nil {
		return ModerationResult{}, notFoundAsUser(err)
	}

	s.notify(ctx, admin, id, types.NotificationMute, "Hesap Susturuldu",
		fmt.Sprintf("Hesabınız %d saat süreyle sessize alınmıştır. Bu süre içinde soru, cevap veya yanıt gönderemezsiniz. Susturma süresi: %s",
			in.MuteHours, FormatDisplayTime(until)))
	slog.InfoContext(ctx, "user muted", "target_id", id, "admin_id", admin.ID, "until", until)

	return ModerationResult{Message: fmt.Sprintf("%s kullanıcısı %d saat susturuldu", user.Username, in.MuteHours), User: user.Username}, nil
}

func (s *ModerationService) Warn(ctx context.Context, admin types.User, id int, in WarnInput) (ModerationResult, error) {
	message := strings.TrimSpace(in.WarningMessage)
	if message == "" {
		return ModerationResult{}, ErrValidation("Uyarı mesajı boş olamaz")
	}
	if len([]rune(message)) > 1000 {
		return ModerationResult{}, ErrValidation("Uyarı mesajı en fazla 1000 karakter olabilir")
	}
	user, err := s.target(ctx, id)
	if err != nil {
		return ModerationResult{}, err
	}

	s.notify(ctx, admin, id, types.NotificationWarning, "YÖNETİCİ UYARISI", "YÖNETİCİ UYARISI: "+message)
	return ModerationResult{Message: fmt.Sprintf("%s kullanıcısına uyarı gönderildi", user.Username), User: user.Username}, nil
}

// DeleteUser removes the account and everything it authored.
func (s *ModerationService) DeleteUser(ctx context.Context, admin types.User, id int) (ModerationResult, error) {
	user, err := s.removeUser(ctx, admin, id)
	if err != nil {
		return ModerationResult{}, err
	}
	return ModerationResult{Message: fmt.Sprintf("Kullanıcı %s silindi", user.Username), User: user.Username}, nil
}

// Ban removes the account. Bans are permanent deletions.
func (s *ModerationService) Ban(ctx context.Context, admin types.User, id int) (ModerationResult, error) {
	user, err := s.removeUser(ctx, admin, id)
	if err != nil {
		return ModerationResult{}, err
	}
	return ModerationResult{Message: fmt.Sprintf("%s hesabı yasaklandı ve silindi", user.Username), User: user.Username}, nil
}

func (s *ModerationService) removeUser(ctx context.Context, admin types.User, id int) (types.User, error) {
	user, err := s.destructiveTarget(ctx, admin, id)
	if err != nil {
		return types.User{}, err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return types.User{}, notFoundAsUser(err)
	}
	slog.InfoContext(ctx, "user deleted", "target_id", id, "admin_id", admin.ID)
	return user, nil
}

func (s *ModerationService) DeleteQuestion(ctx context.Context, admin types.User, id int) (ModerationResult, error) {
	question, err := s.questions.Get(ctx, id)
	if err == nil {
		err = s.questions.Delete(ctx, id)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ModerationResult{}, ErrNotFound(msgQuestionNotFound)
		}
		return ModerationResult{}, err
	}
	slog.InfoContext(ctx, "question deleted by admin", "question_id", id, "admin_id", admin.ID)
	return ModerationResult{Message: fmt.Sprintf("Soru '%s' admin tarafından silindi", question.Title)}, nil
}

func (s *ModerationService) DeleteAnswer(ctx context.Context, admin types.User, id int) (ModerationResult, error) {
	if err := s.answers.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ModerationResult{}, ErrNotFound(msgAnswerNotFound)
		}
		return ModerationResult{}, err
	}
	slog.InfoContext(ctx, "answer deleted by admin", "answer_id", id, "admin_id", admin.ID)
	return ModerationResult{Message: "Cevap admin tarafından silindi"}, nil
}

// ListAdmins returns admin accounts with activity totals.
func (s *ModerationService) ListAdmins(ctx context.Context) ([]types.UserSummary, error) {
	return s.users.ListAdmins(ctx)
}

// Search finds users by username, email or university.
func (s *ModerationService) Search(ctx context.Context, term string) ([]types.UserSummary, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < searchMinRunes {
		return nil, ErrValidation("Arama terimi en az 2 karakter olmalı")
	}
	return s.users.Search(ctx, term, searchLimit)
}
