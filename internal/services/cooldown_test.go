package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 90 * time.Second, want: "1 dakika 30 saniye"},
		{in: 2 * time.Minute, want: "2 dakika"},
		{in: 45 * time.Second, want: "45 saniye"},
		{in: 1500 * time.Millisecond, want: "2 saniye"},
		{in: 0, want: "1 saniye"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.in), tt.in.String())
	}
}

func TestFormatDisplayTime(t *testing.T) {
	assert.Equal(t, "10.03.2026 15:00", FormatDisplayTime(fixedNow))
}

func TestPostGate_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("shared window", func(t *testing.T) {
		c := newClock()
		users := newMemUsers(student(1, "ali"))
		gate := NewPostGate(users, 2*time.Minute, c.Now)

		require.NoError(t, gate.Reserve(ctx, users.byID[1], ActionQuestion))

		c.Advance(30 * time.Second)
		err := gate.Reserve(ctx, users.byID[1], ActionAnswer)
		require.True(t, IsKind(err, KindRateLimited))
		assert.EqualError(t, err, "Çok sık cevap veriyorsunuz. 1 dakika 30 saniye sonra tekrar deneyebilirsiniz.")

		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, 90*time.Second, serr.RetryAfter)

		err = gate.Reserve(ctx, users.byID[1], ActionReply)
		assert.EqualError(t, err, "Çok hızlı cevap veriyorsunuz. 1 dakika 30 saniye sonra tekrar deneyin.")
		err = gate.Reserve(ctx, users.byID[1], ActionQuestion)
		assert.EqualError(t, err, "Çok sık soru soruyorsunuz. 1 dakika 30 saniye sonra tekrar deneyebilirsiniz.")

		c.Advance(90 * time.Second)
		assert.NoError(t, gate.Reserve(ctx, users.byID[1], ActionReply))
	})

	t.Run("admins are exempt", func(t *testing.T) {
		admin := student(1, "admin")
		admin.IsAdmin = true
		users := newMemUsers(admin)
		gate := NewPostGate(users, 2*time.Minute, newClock().Now)

		for i := 0; i < 3; i++ {
			require.NoError(t, gate.Reserve(ctx, admin, ActionQuestion))
		}
	})
}

func TestPostGate_CheckMuted(t *testing.T) {
	c := newClock()
	gate := NewPostGate(newMemUsers(), time.Minute, c.Now)

	until := fixedNow.Add(2 * time.Hour)
	u := student(1, "ali")
	u.IsMuted = true
	u.MuteUntil = &until

	err := gate.CheckMuted(u, ActionReply)
	require.True(t, IsKind(err, KindForbidden))
	assert.EqualError(t, err, "Hesabınız susturulmuş durumda. Susturma süresi: 10.03.2026 17:00. Bu süre içinde yanıt gönderemezsiniz.")

	c.Advance(3 * time.Hour)
	assert.NoError(t, gate.CheckMuted(u, ActionQuestion))
}
