package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"legalai-assistant/internal/model"
	"legalai-assistant/internal/render"
	"legalai-assistant/internal/repository"
	"legalai-assistant/internal/upstream"
)

var (
	ErrQueryEmpty      = errors.New("query text is empty")
	ErrMessageNotFound = errors.New("message not found")
	ErrAuditDisabled   = errors.New("audit trail is disabled")
)

const (
	// Shown when the upstream answers but the response field is blank.
	fallbackAnswer = "Sorry, I couldn't process that."
	// The assistant-lane error message for a failed query. The cause is
	// logged, never shown.
	failedAnswer = "Something went wrong while answering your question. Please try again."
)

// LegalUpstream is the remote legal-query service.
type LegalUpstream interface {
	Query(ctx context.Context, token, query string) (*upstream.QueryResult, error)
	Categories(ctx context.Context, token string) ([]string, error)
}

// AuditSink receives one record per answered query.
type AuditSink interface {
	Publish(ctx context.Context, record model.AuditRecord) error
}

// ChatService runs the conversation: optimistic append of the user's
// question, one upstream call, then the answer plus its key points appended
// in response order.
type ChatService struct {
	legalClient   LegalUpstream
	conversations *repository.ConversationRepository
	audit         AuditSink                   // nil when the audit trail is off
	auditRepo     *repository.AuditRepository // nil when the audit trail is off
	now           func() time.Time
	newID         func() string
	logger        *slog.Logger
}

func NewChatService(
	legalClient LegalUpstream,
	conversations *repository.ConversationRepository,
	audit AuditSink,
	auditRepo *repository.AuditRepository,
	logger *slog.Logger,
) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		legalClient:   legalClient,
		conversations: conversations,
		audit:         audit,
		auditRepo:     auditRepo,
		now:           time.Now,
		newID:         uuid.NewString,
		logger:        logger,
	}
}

// SendQuery appends the user's question before the upstream round-trip, so
// the transcript reflects it even if the call never resolves. It returns
// every message the call appended, in order.
func (s *ChatService) SendQuery(ctx context.Context, session *model.Session, text string) ([]model.Message, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, ErrQueryEmpty
	}

	conv := s.conversations.GetOrCreate(session.Token)

	userMsg := model.Message{
		ID:        s.newID(),
		Role:      model.RoleUser,
		Content:   query,
		CreatedAt: s.now(),
	}
	if !conv.Append(userMsg) {
		return nil, ErrSessionNotFound
	}

	result, err := s.legalClient.Query(ctx, session.Token, query)
	if err != nil {
		if errors.Is(err, upstream.ErrTokenRejected) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("legal query failed", "username", session.Username, "error", err)
		failMsg := s.assistantMessage(failedAnswer)
		failMsg.Failed = true
		if !conv.Append(failMsg) {
			// Session was cleared while the call was in flight; the late
			// failure has no transcript to land in.
			return nil, ErrSessionNotFound
		}
		return []model.Message{userMsg, failMsg}, nil
	}

	answer := strings.TrimSpace(result.Response)
	if answer == "" {
		answer = fallbackAnswer
	}

	appended := []model.Message{userMsg}
	for _, part := range append([]string{answer}, result.KeyPoints...) {
		msg := s.assistantMessage(part)
		if !conv.Append(msg) {
			s.logger.Info("discarding stale response", "username", session.Username)
			return nil, ErrSessionNotFound
		}
		appended = append(appended, msg)
	}

	if s.audit != nil {
		// Fire and forget: an audit hiccup must not fail the answer.
		if err := s.audit.Publish(ctx, model.AuditRecord{
			Username:  session.Username,
			Query:     query,
			Answer:    answer,
			KeyPoints: len(result.KeyPoints),
			CreatedAt: s.now(),
		}); err != nil {
			s.logger.Warn("publish audit record failed", "error", err)
		}
	}

	return appended, nil
}

// Transcript returns the full conversation in append order.
func (s *ChatService) Transcript(session *model.Session) []model.Message {
	return s.conversations.GetOrCreate(session.Token).Messages()
}

// History returns the user-authored messages only, for the sidebar.
func (s *ChatService) History(session *model.Session) []model.Message {
	return s.conversations.GetOrCreate(session.Token).UserMessages()
}

// DeleteMessage removes the message with that id. Repeats are no-ops.
func (s *ChatService) DeleteMessage(session *model.Session, id string) {
	s.conversations.GetOrCreate(session.Token).Delete(id)
}

// RenameMessage replaces only the text of the message, preserving id, role
// and timestamp. Assistant messages get their HTML re-rendered.
func (s *ChatService) RenameMessage(session *model.Session, id, newText string) (*model.Message, error) {
	text := strings.TrimSpace(newText)
	if text == "" {
		return nil, ErrInvalidInput
	}

	conv := s.conversations.GetOrCreate(session.Token)
	existing, ok := conv.Get(id)
	if !ok {
		return nil, ErrMessageNotFound
	}

	html := ""
	if existing.Role == model.RoleAssistant {
		html = s.renderHTML(text)
	}

	updated, ok := conv.Rename(id, text, html)
	if !ok {
		return nil, ErrMessageNotFound
	}
	return &updated, nil
}

// Categories passes through the upstream's list of legal areas.
func (s *ChatService) Categories(ctx context.Context, session *model.Session) ([]string, error) {
	categories, err := s.legalClient.Categories(ctx, session.Token)
	if err != nil {
		if errors.Is(err, upstream.ErrTokenRejected) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return categories, nil
}

// AuditHistory returns the caller's persisted query records.
func (s *ChatService) AuditHistory(session *model.Session, limit int) ([]model.AuditRecord, error) {
	if s.auditRepo == nil {
		return nil, ErrAuditDisabled
	}
	return s.auditRepo.ListByUsername(session.Username, limit)
}

func (s *ChatService) assistantMessage(text string) model.Message {
	return model.Message{
		ID:        s.newID(),
		Role:      model.RoleAssistant,
		Content:   text,
		HTML:      s.renderHTML(text),
		CreatedAt: s.now(),
	}
}

func (s *ChatService) renderHTML(text string) string {
	html, err := render.Markdown(text)
	if err != nil {
		s.logger.Warn("render assistant markdown failed", "error", err)
		return ""
	}
	return html
}
