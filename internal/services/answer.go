package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/unisoruyor/apiserver/internal/store"
	"github.com/unisoruyor/apiserver/types"
)

// AnswerRepository defines persistence operations for answers and replies.
type AnswerRepository interface {
	Get(ctx context.Context, id int) (types.Answer, error)
	ListByQuestion(ctx context.Context, questionID int) ([]types.Answer, error)
	ListReplies(ctx context.Context, parentID int) ([]types.Answer, error)
	ListRecentByAuthor(ctx context.Context, authorID, limit int) ([]types.Answer, error)
	CountByAuthor(ctx context.Context, authorID int) (int, error)
	Create(ctx context.Context, answer types.Answer) (types.Answer, error)
	Update(ctx context.Context, answer types.Answer) (types.Answer, error)
	Delete(ctx context.Context, id int) error
}

// MentionLookup resolves mentioned usernames to accounts.
type MentionLookup interface {
	ListByUsernames(ctx context.Context, names []string) ([]types.User, error)
}

// CreateAnswerInput is the payload of a new answer or reply.
type CreateAnswerInput struct {
	Content        string   `json:"content" validate:"required,notblank,max=5000"`
	ParentAnswerID *int     `json:"parent_answer_id"`
	AttachmentIDs  []string `json:"attachment_ids"`
}

// UpdateAnswerInput is the payload of an answer edit.
type UpdateAnswerInput struct {
	Content string `json:"content" validate:"required,notblank,max=5000"`
}

// AnswerService implements answering, replying and mention notifications.
type AnswerService struct {
	questions     QuestionRepository
	answers       AnswerRepository
	users         MentionLookup
	files         FileRepository
	gate          *PostGate
	notifications *NotificationService
}

func NewAnswerService(
	questions QuestionRepository,
	answers AnswerRepository,
	users MentionLookup,
	files FileRepository,
	gate *PostGate,
	notifications *NotificationService,
) *AnswerService {
	return &AnswerService{
		questions:     questions,
		answers:       answers,
		users:         users,
		files:         files,
		gate:          gate,
		notifications: notifications,
	}
}

func (s *AnswerService) getAnswer(ctx context.Context, id int) (types.Answer, error) {
	answer, err := s.answers.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Answer{}, ErrNotFound(msgAnswerNotFound)
		}
		return types.Answer{}, err
	}
	return answer, nil
}

// ListByQuestion returns all answers and replies on a question, oldest first.
func (s *AnswerService) ListByQuestion(ctx context.Context, questionID int) ([]types.Answer, error) {
	if _, err := s.questions.Get(ctx, questionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound(msgQuestionNotFound)
		}
		return nil, err
	}
	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if err := attachAnswerFiles(ctx, s.files, answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// ListReplies returns the direct replies to an answer.
func (s *AnswerService) ListReplies(ctx context.Context, answerID int) ([]types.Answer, error) {
	if _, err := s.getAnswer(ctx, answerID); err != nil {
		return nil, err
	}
	replies, err := s.answers.ListReplies(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if err := attachAnswerFiles(ctx, s.files, replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// Reply posts a reply to an existing answer on the answer's question.
func (s *AnswerService) Reply(ctx context.Context, user types.User, parentID int, in CreateAnswerInput) (types.Answer, error) {
	parent, err := s.getAnswer(ctx, parentID)
	if err != nil {
		return types.Answer{}, err
	}
	in.ParentAnswerID = &parent.ID
	return s.Create(ctx, user, parent.QuestionID, in)
}

// Create posts an answer on a question, or a reply when ParentAnswerID is set.
func (s *AnswerService) Create(ctx context.Context, user types.User, questionID int, in CreateAnswerInput) (types.Answer, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validate(in); err != nil {
		return types.Answer{}, err
	}

	question, err := s.questions.Get(ctx, questionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Answer{}, ErrNotFound(msgQuestionNotFound)
		}
		return types.Answer{}, err
	}

	action := ActionAnswer
	var parent *types.Answer
	if in.ParentAnswerID != nil {
		action = ActionReply
		p, err := s.getAnswer(ctx, *in.ParentAnswerID)
		if err != nil {
			return types.Answer{}, err
		}
		if p.QuestionID != question.ID {
			return types.Answer{}, ErrValidation("Yanıt verilen cevap bu soruya ait değil")
		}
		// Threads are one level deep: a reply to a reply joins the top-level
		// answer's thread, while the reply's author is still the one notified.
		if p.ParentAnswerID != nil {
			in.ParentAnswerID = p.ParentAnswerID
		}
		parent = &p
	}

	if err := s.gate.CheckMuted(user, action); err != nil {
		return types.Answer{}, err
	}
	if err := checkClean("content", "İçerik", in.Content); err != nil {
		return types.Answer{}, err
	}

	fileIDs, err := ownedAttachments(ctx, s.files, user.ID, in.AttachmentIDs)
	if err != nil {
		return types.Answer{}, err
	}

	if err := s.gate.Reserve(ctx, user, action); err != nil {
		return types.Answer{}, err
	}

	created, err := s.answers.Create(ctx, types.Answer{
		QuestionID:     question.ID,
		Content:        in.Content,
		AuthorID:       user.ID,
		AuthorUsername: user.Username,
		ParentAnswerID: in.ParentAnswerID,
		MentionedUsers: ExtractMentions(in.Content),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Answer{}, ErrNotFound(msgQuestionNotFound)
		}
		return types.Answer{}, err
	}

	if len(fileIDs) > 0 {
		s.linkAttachments(ctx, &created, fileIDs)
	}

	s.notifyParticipants(ctx, user, question, parent, created)
	slog.InfoContext(ctx, "answer created", "answer_id", created.ID, "question_id", question.ID, "reply", created.IsReply())
	return created, nil
}

// linkAttachments attaches uploaded files to a stored answer. Failures are
// logged and leave the answer without attachments.
func (s *AnswerService) linkAttachments(ctx context.Context, answer *types.Answer, fileIDs []string) {
	if err := s.files.AttachToAnswer(ctx, answer.ID, fileIDs); err != nil {
		slog.WarnContext(ctx, "failed to attach files to answer", "answer_id", answer.ID, "files", len(fileIDs), "error", err)
		return
	}
	files, err := s.files.ListByAnswers(ctx, []int{answer.ID})
	if err != nil {
		slog.WarnContext(ctx, "failed to load answer attachments", "answer_id", answer.ID, "error", err)
		return
	}
	answer.Attachments = withURLs(files[answer.ID])
}

// notifyParticipants sends at most one notification per user for a new answer.
// A reply notification wins over an answer notification, which wins over a mention.
// The author of the new answer is never notified.
func (s *AnswerService) notifyParticipants(ctx context.Context, actor types.User, question types.Question, parent *types.Answer, answer types.Answer) {
	notified := map[int]struct{}{actor.ID: {}}
	send := func(recipient int, kind types.NotificationType, title, message string) {
		if _, done := notified[recipient]; done {
			return
		}
		notified[recipient] = struct{}{}
		s.notifications.Notify(ctx, types.Notification{
			UserID:            recipient,
			Type:              kind,
			Title:             title,
			Message:           message,
			RelatedQuestionID: intPtr(question.ID),
			RelatedAnswerID:   intPtr(answer.ID),
			FromUserID:        intPtr(actor.ID),
			FromUsername:      actor.Username,
		})
	}

	if parent != nil {
		send(parent.AuthorID, types.NotificationReply, "Cevabınıza yanıt geldi",
			fmt.Sprintf("%s cevabınıza yanıt verdi", actor.Username))
	}
	send(question.AuthorID, types.NotificationAnswer, "Sorunuza yeni cevap",
		fmt.Sprintf("%s sorunuza cevap verdi", actor.Username))

	if len(answer.MentionedUsers) == 0 {
		return
	}
	mentioned, err := s.users.ListByUsernames(ctx, answer.MentionedUsers)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve mentions", "answer_id", answer.ID, "error", err)
		return
	}
	byName := make(map[string]int, len(mentioned))
	for _, u := range mentioned {
		byName[u.Username] = u.ID
	}
	for _, name := range answer.MentionedUsers {
		if id, ok := byName[name]; ok {
			send(id, types.NotificationMention, "Bir cevapta etiketlendiniz",
				fmt.Sprintf("%s sizi bir cevapta etiketledi", actor.Username))
		}
	}
}

// Update edits an answer. Only the author or an admin may edit.
func (s *AnswerService) Update(ctx context.Context, user types.User, id int, in UpdateAnswerInput) (types.Answer, error) {
	answer, err := s.getAnswer(ctx, id)
	if err != nil {
		return types.Answer{}, err
	}
	if answer.AuthorID != user.ID && !user.IsAdmin {
		return types.Answer{}, ErrForbidden("Bu cevabı düzenleme yetkiniz yok")
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := validate(in); err != nil {
		return types.Answer{}, err
	}
	if err := checkClean("content", "İçerik", in.Content); err != nil {
		return types.Answer{}, err
	}

	answer.Content = in.Content
	answer.MentionedUsers = ExtractMentions(in.Content)
	updated, err := s.answers.Update(ctx, answer)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Answer{}, ErrNotFound(msgAnswerNotFound)
		}
		return types.Answer{}, err
	}
	return updated, nil
}

// Delete removes an answer together with its replies.
func (s *AnswerService) Delete(ctx context.Context, user types.User, id int) error {
	answer, err := s.getAnswer(ctx, id)
	if err != nil {
		return err
	}
	if answer.AuthorID != user.ID && !user.IsAdmin {
		return ErrForbidden("Bu cevabı silme yetkiniz yok")
	}
	return s.delete(ctx, id)
}

func (s *AnswerService) delete(ctx context.Context, id int) error {
	if err := s.answers.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound(msgAnswerNotFound)
		}
		return err
	}
	return nil
}

// attachAnswerFiles loads attachments for answers in one query.
func attachAnswerFiles(ctx context.Context, files FileRepository, answers []types.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	ids := make([]int, len(answers))
	for i, a := range answers {
		ids[i] = a.ID
	}
	byAnswer, err := files.ListByAnswers(ctx, ids)
	if err != nil {
		return err
	}
	for i := range answers {
		if list, ok := byAnswer[answers[i].ID]; ok {
			answers[i].Attachments = withURLs(list)
		}
	}
	return nil
}
