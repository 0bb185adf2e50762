package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/unisoruyor/apiserver/internal/observability"
	"github.com/unisoruyor/apiserver/types"
)

// PostAction names what the user is trying to submit. It selects the
// timestamp column and the wording of cooldown messages.
type PostAction int

const (
	ActionQuestion PostAction = iota
	ActionAnswer
	ActionReply
)

func (a PostAction) kind() types.PostKind {
	if a == ActionQuestion {
		return types.PostQuestion
	}
	return types.PostAnswer
}

func (a PostAction) String() string {
	switch a {
	case ActionQuestion:
		return "question"
	case ActionReply:
		return "reply"
	default:
		return "answer"
	}
}

// displayLocation is Turkey time (UTC+3, no daylight saving).
var displayLocation = time.FixedZone("TRT", 3*60*60)

const displayLayout = "02.01.2006 15:04"

// FormatDisplayTime renders t the way moderation messages show dates.
func FormatDisplayTime(t time.Time) string {
	return t.In(displayLocation).Format(displayLayout)
}

// FormatRemaining renders a wait as "X dakika Y saniye", rounding up to whole seconds.
func FormatRemaining(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	minutes, seconds := secs/60, secs%60
	switch {
	case minutes > 0 && seconds > 0:
		return fmt.Sprintf("%d dakika %d saniye", minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%d dakika", minutes)
	default:
		return fmt.Sprintf("%d saniye", seconds)
	}
}

func cooldownMessage(action PostAction, remaining time.Duration) string {
	wait := FormatRemaining(remaining)
	switch action {
	case ActionQuestion:
		return fmt.Sprintf("Çok sık soru soruyorsunuz. %s sonra tekrar deneyebilirsiniz.", wait)
	case ActionReply:
		return fmt.Sprintf("Çok hızlı cevap veriyorsunuz. %s sonra tekrar deneyin.", wait)
	default:
		return fmt.Sprintf("Çok sık cevap veriyorsunuz. %s sonra tekrar deneyebilirsiniz.", wait)
	}
}

func muteMessage(action PostAction, until time.Time) string {
	noun := "soru"
	switch action {
	case ActionAnswer:
		noun = "cevap"
	case ActionReply:
		noun = "yanıt"
	}
	return fmt.Sprintf("Hesabınız susturulmuş durumda. Susturma süresi: %s. Bu süre içinde %s gönderemezsiniz.",
		FormatDisplayTime(until), noun)
}

// PostReserver stamps a post timestamp if the cooldown allows it.
type PostReserver interface {
	ReservePost(ctx context.Context, id int, kind types.PostKind, now time.Time, cooldown time.Duration) (bool, error)
	GetByID(ctx context.Context, id int) (types.User, error)
}

// PostGate enforces the mute state and the shared posting cooldown.
// Questions, answers and replies share one cooldown window measured from
// the later of last_question_at and last_answer_at. Admins are exempt.
type PostGate struct {
	users    PostReserver
	cooldown time.Duration
	now      func() time.Time
}

func NewPostGate(users PostReserver, cooldown time.Duration, now func() time.Time) *PostGate {
	if now == nil {
		now = time.Now
	}
	return &PostGate{users: users, cooldown: cooldown, now: now}
}

// CheckMuted rejects users whose mute has not expired.
func (g *PostGate) CheckMuted(user types.User, action PostAction) error {
	if user.MutedAt(g.now()) {
		return ErrForbidden(muteMessage(action, *user.MuteUntil))
	}
	return nil
}

// Reserve claims the user's next post slot or reports the remaining wait.
func (g *PostGate) Reserve(ctx context.Context, user types.User, action PostAction) error {
	if user.IsAdmin || g.cooldown <= 0 {
		return nil
	}

	now := g.now()
	ok, err := g.users.ReservePost(ctx, user.ID, action.kind(), now, g.cooldown)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	remaining := g.cooldown
	if fresh, err := g.users.GetByID(ctx, user.ID); err == nil {
		if last := fresh.LastPostAt(); last != nil {
			remaining = last.Add(g.cooldown).Sub(now)
		}
	}
	if remaining <= 0 {
		remaining = time.Second
	}

	observability.RateLimitedTotal.WithLabelValues(action.String()).Inc()
	return ErrRateLimited(cooldownMessage(action, remaining), remaining)
}
