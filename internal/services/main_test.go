package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/unisoruyor/apiserver/internal/storage"
	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// clock is a mutable time source for services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: fixedNow} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memUsers struct {
	byID   map[int]types.User
	nextID int
}

func newMemUsers(users ...types.User) *memUsers {
	m := &memUsers{byID: map[int]types.User{}, nextID: 1}
	for _, u := range users {
		m.byID[u.ID] = u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *memUsers) GetByID(_ context.Context, id int) (types.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) find(match func(types.User) bool) (types.User, error) {
	for _, u := range m.byID {
		if match(u) {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (types.User, error) {
	return m.find(func(u types.User) bool { return u.Username == username })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	return m.find(func(u types.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memUsers) GetByLogin(_ context.Context, identifier string) (types.User, error) {
	return m.find(func(u types.User) bool { return strings.EqualFold(u.Email, identifier) || u.Username == identifier })
}

func (m *memUsers) ListByUsernames(_ context.Context, names []string) ([]types.User, error) {
	var out []types.User
	for _, name := range names {
		for _, u := range m.byID {
			if u.Username == name {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (m *memUsers) Create(_ context.Context, user types.User) (types.User, error) {
	for _, u := range m.byID {
		if u.Username == user.Username {
			return types.User{}, &store.ConflictError{Constraint: store.ConstraintUsername}
		}
		if strings.EqualFold(u.Email, user.Email) {
			return types.User{}, &store.ConflictError{Constraint: store.ConstraintEmail}
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = fixedNow
	user.UpdatedAt = fixedNow
	m.byID[user.ID] = user
	return user, nil
}

func (m *memUsers) update(id int, fn func(*types.User)) error {
	u, ok := m.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(&u)
	m.byID[id] = u
	return nil
}

func (m *memUsers) SetAdmin(_ context.Context, id int, isAdmin bool) error {
	return m.update(id, func(u *types.User) { u.IsAdmin = isAdmin })
}

func (m *memUsers) Suspend(_ context.Context, id int, until time.Time, reason string) error {
	return m.update(id, func(u *types.User) {
		u.IsSuspended = true
		u.SuspendUntil = &until
		u.SuspendReason = reason
	})
}

func (m *memUsers) ClearSuspension(_ context.Context, id int) error {
	return m.update(id, func(u *types.User) {
		u.IsSuspended = false
		u.SuspendUntil = nil
		u.SuspendReason = ""
	})
}

func (m *memUsers) Mute(_ context.Context, id int, until time.Time) error {
	return m.update(id, func(u *types.User) {
		u.IsMuted = true
		u.MuteUntil = &until
	})
}

func (m *memUsers) ClearMute(_ context.Context, id int) error {
	return m.update(id, func(u *types.User) {
		u.IsMuted = false
		u.MuteUntil = nil
	})
}

func (m *memUsers) ReservePost(_ context.Context, id int, kind types.PostKind, now time.Time, cooldown time.Duration) (bool, error) {
	u, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	if last := u.LastPostAt(); last != nil && last.After(now.Add(-cooldown)) {
		return false, nil
	}
	stamp := now
	if kind == types.PostQuestion {
		u.LastQuestionAt = &stamp
	} else {
		u.LastAnswerAt = &stamp
	}
	m.byID[id] = u
	return true, nil
}

func (m *memUsers) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) ListAdmins(_ context.Context) ([]types.UserSummary, error) {
	var out []types.UserSummary
	for _, u := range m.byID {
		if u.IsAdmin {
			out = append(out, types.UserSummary{User: u})
		}
	}
	return out, nil
}

func (m *memUsers) Search(_ context.Context, term string, limit int) ([]types.UserSummary, error) {
	var out []types.UserSummary
	for _, u := range m.byID {
		if strings.Contains(u.Username, term) && len(out) < limit {
			out = append(out, types.UserSummary{User: u})
		}
	}
	return out, nil
}

type memQuestions struct {
	byID   map[int]types.Question
	nextID int
}

func newMemQuestions(questions ...types.Question) *memQuestions {
	m := &memQuestions{byID: map[int]types.Question{}, nextID: 100}
	for _, q := range questions {
		m.byID[q.ID] = q
	}
	return m
}

func (m *memQuestions) List(_ context.Context, filter types.QuestionFilter, offset, limit int) ([]types.Question, int, error) {
	var all []types.Question
	for _, q := range m.byID {
		if filter.AuthorID != 0 && q.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		all = append(all, q)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	if offset >= total {
		return []types.Question{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memQuestions) Get(_ context.Context, id int) (types.Question, error) {
	q, ok := m.byID[id]
	if !ok {
		return types.Question{}, store.ErrNotFound
	}
	return q, nil
}

func (m *memQuestions) View(ctx context.Context, id int) (types.Question, error) {
	q, err := m.Get(ctx, id)
	if err != nil {
		return q, err
	}
	q.ViewCount++
	m.byID[id] = q
	return q, nil
}

func (m *memQuestions) Create(_ context.Context, q types.Question) (types.Question, error) {
	q.ID = m.nextID
	m.nextID++
	q.CreatedAt = fixedNow
	q.UpdatedAt = fixedNow
	m.byID[q.ID] = q
	return q, nil
}

func (m *memQuestions) Update(_ context.Context, q types.Question) (types.Question, error) {
	if _, ok := m.byID[q.ID]; !ok {
		return types.Question{}, store.ErrNotFound
	}
	m.byID[q.ID] = q
	return q, nil
}

func (m *memQuestions) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memAnswers struct {
	byID   map[int]types.Answer
	nextID int
}

func newMemAnswers(answers ...types.Answer) *memAnswers {
	m := &memAnswers{byID: map[int]types.Answer{}, nextID: 500}
	for _, a := range answers {
		m.byID[a.ID] = a
	}
	return m
}

func (m *memAnswers) Get(_ context.Context, id int) (types.Answer, error) {
	a, ok := m.byID[id]
	if !ok {
		return types.Answer{}, store.ErrNotFound
	}
	return a, nil
}

func (m *memAnswers) filter(keep func(types.Answer) bool) []types.Answer {
	out := []types.Answer{}
	for _, a := range m.byID {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memAnswers) ListByQuestion(_ context.Context, questionID int) ([]types.Answer, error) {
	return m.filter(func(a types.Answer) bool { return a.QuestionID == questionID }), nil
}

func (m *memAnswers) ListReplies(_ context.Context, parentID int) ([]types.Answer, error) {
	return m.filter(func(a types.Answer) bool { return a.ParentAnswerID != nil && *a.ParentAnswerID == parentID }), nil
}

func (m *memAnswers) ListRecentByAuthor(_ context.Context, authorID, limit int) ([]types.Answer, error) {
	out := m.filter(func(a types.Answer) bool { return a.AuthorID == authorID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAnswers) CountByAuthor(_ context.Context, authorID int) (int, error) {
	return len(m.filter(func(a types.Answer) bool { return a.AuthorID == authorID })), nil
}

func (m *memAnswers) Create(_ context.Context, a types.Answer) (types.Answer, error) {
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = fixedNow
	a.UpdatedAt = fixedNow
	m.byID[a.ID] = a
	return a, nil
}

func (m *memAnswers) Update(_ context.Context, a types.Answer) (types.Answer, error) {
	if _, ok := m.byID[a.ID]; !ok {
		return types.Answer{}, store.ErrNotFound
	}
	m.byID[a.ID] = a
	return a, nil
}

func (m *memAnswers) Delete(_ context.Context, id int) error {
	if _, ok := m.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type likeKey struct{ question, user int }

type memLikes struct {
	likes map[likeKey]bool
}

func newMemLikes() *memLikes { return &memLikes{likes: map[likeKey]bool{}} }

func (m *memLikes) Like(_ context.Context, questionID, userID int) (bool, error) {
	k := likeKey{questionID, userID}
	if m.likes[k] {
		return false, nil
	}
	m.likes[k] = true
	return true, nil
}

func (m *memLikes) Unlike(_ context.Context, questionID, userID int) (bool, error) {
	k := likeKey{questionID, userID}
	existed := m.likes[k]
	delete(m.likes, k)
	return existed, nil
}

func (m *memLikes) HasLiked(_ context.Context, questionID, userID int) (bool, error) {
	return m.likes[likeKey{questionID, userID}], nil
}

func (m *memLikes) Count(_ context.Context, questionID int) (int, error) {
	n := 0
	for k := range m.likes {
		if k.question == questionID {
			n++
		}
	}
	return n, nil
}

type memNotifications struct {
	created   []types.Notification
	createErr error
	readErr   error
}

func (m *memNotifications) Create(_ context.Context, n types.Notification) (types.Notification, error) {
	if m.createErr != nil {
		return types.Notification{}, m.createErr
	}
	n.ID = len(m.created) + 1
	n.CreatedAt = fixedNow
	m.created = append(m.created, n)
	return n, nil
}

func (m *memNotifications) ListByUser(_ context.Context, userID int, unreadOnly bool, limit int) ([]types.Notification, error) {
	out := []types.Notification{}
	for _, n := range m.created {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(_ context.Context, id, userID int) error {
	if m.readErr != nil {
		return m.readErr
	}
	for i, n := range m.created {
		if n.ID == id && n.UserID == userID {
			m.created[i].IsRead = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID int) (int, error) {
	count := 0
	for i, n := range m.created {
		if n.UserID == userID && !n.IsRead {
			m.created[i].IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) CountUnread(_ context.Context, userID int) (int, error) {
	count := 0
	for _, n := range m.created {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// recipients lists notification recipients and types in creation order.
func (m *memNotifications) recipients() []string {
	out := make([]string, len(m.created))
	for i, n := range m.created {
		out[i] = string(n.Type) + ":" + strconv.Itoa(n.UserID)
	}
	return out
}

type memFiles struct {
	byID          map[string]types.FileUpload
	questionLinks map[int][]string
	answerLinks   map[int][]string
	createErr     error
	attachErr     error
}

func newMemFiles(files ...types.FileUpload) *memFiles {
	m := &memFiles{byID: map[string]types.FileUpload{}, questionLinks: map[int][]string{}, answerLinks: map[int][]string{}}
	for _, f := range files {
		m.byID[f.ID] = f
	}
	return m
}

func (m *memFiles) Create(_ context.Context, f types.FileUpload) (types.FileUpload, error) {
	if m.createErr != nil {
		return types.FileUpload{}, m.createErr
	}
	m.byID[f.ID] = f
	return f, nil
}

func (m *memFiles) Get(_ context.Context, id string) (types.FileUpload, error) {
	f, ok := m.byID[id]
	if !ok {
		return types.FileUpload{}, store.ErrNotFound
	}
	return f, nil
}

func (m *memFiles) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memFiles) AttachToQuestion(_ context.Context, questionID int, ids []string) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	m.questionLinks[questionID] = append(m.questionLinks[questionID], ids...)
	return nil
}

func (m *memFiles) AttachToAnswer(_ context.Context, answerID int, ids []string) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	m.answerLinks[answerID] = append(m.answerLinks[answerID], ids...)
	return nil
}

func (m *memFiles) ListByQuestion(_ context.Context, questionID int) ([]types.FileUpload, error) {
	out := []types.FileUpload{}
	for _, id := range m.questionLinks[questionID] {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *memFiles) ListByAnswers(_ context.Context, answerIDs []int) (map[int][]types.FileUpload, error) {
	out := map[int][]types.FileUpload{}
	for _, answerID := range answerIDs {
		for _, id := range m.answerLinks[answerID] {
			out[answerID] = append(out[answerID], m.byID[id])
		}
	}
	return out, nil
}

type memObjects struct {
	objects map[string][]byte
	putErr  error
}

func newMemObjects() *memObjects { return &memObjects{objects: map[string][]byte{}} }

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

type memPublisher struct {
	events []types.NotificationEvent
	err    error
}

func (m *memPublisher) PublishNotification(_ context.Context, event types.NotificationEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func student(id int, username string) types.User {
	return types.User{
		ID:         id,
		Username:   username,
		Email:      username + "@example.com",
		University: "Boğaziçi Üniversitesi",
		Faculty:    "Mühendislik Fakültesi",
		Department: "Bilgisayar Mühendisliği",
	}
}

// forum bundles services over shared in-memory repositories.
type forum struct {
	clock         *clock
	users         *memUsers
	questions     *memQuestions
	answers       *memAnswers
	likes         *memLikes
	files         *memFiles
	notifications *memNotifications
	questionSvc   *QuestionService
	answerSvc     *AnswerService
	moderation    *ModerationService
}

func newForum(users ...types.User) *forum {
	f := &forum{
		clock:         newClock(),
		users:         newMemUsers(users...),
		questions:     newMemQuestions(),
		answers:       newMemAnswers(),
		likes:         newMemLikes(),
		files:         newMemFiles(),
		notifications: &memNotifications{},
	}
	notifier := NewNotificationService(f.notifications, nil)
	gate := NewPostGate(f.users, 2*time.Minute, f.clock.Now)
	f.questionSvc = NewQuestionService(f.questions, f.answers, f.likes, f.files, DefaultCatalog(), gate, notifier)
	f.answerSvc = NewAnswerService(f.questions, f.answers, f.users, f.files, gate, notifier)
	f.moderation = NewModerationService(f.users, f.questions, f.answers, notifier, f.clock.Now)
	return f
}

// user returns the stored copy, which carries cooldown timestamps.
func (f *forum) user(id int) types.User {
	return f.users.byID[id]
}
