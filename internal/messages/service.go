package messages

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

// Service exposes direct messaging between buyers and farmers.
type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, req SendMessageRequest) (*MessageDTO, error)
	Conversations(ctx context.Context, userID uuid.UUID) ([]ConversationDTO, error)
	OpenConversation(ctx context.Context, userID, otherID uuid.UUID) ([]MessageDTO, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

type service struct {
	repo  *Repository
	users userDirectory
}

// NewService constructs a messages service.
func NewService(repo *Repository, users userDirectory) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messages repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory is required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) Send(ctx context.Context, senderID uuid.UUID, req SendMessageRequest) (*MessageDTO, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if req.RecipientID == senderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}

	if _, err := s.users.FindByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipient")
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Content:     content,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create message")
	}
	return FromModel(message), nil
}

// Conversations builds the inbox: one row per counterparty with the latest
// message and the unread count, most recent thread first. Messages without
// a timestamp sort as oldest.
func (s *service) Conversations(ctx context.Context, userID uuid.UUID) ([]ConversationDTO, error) {
	items, err := s.repo.ListInvolving(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list messages")
	}

	type thread struct {
		last   *models.Message
		unread int
	}
	threads := map[uuid.UUID]*thread{}
	order := []uuid.UUID{}

	for i := range items {
		msg := &items[i]
		other := msg.SenderID
		if other == userID {
			other = msg.RecipientID
		}

		t, ok := threads[other]
		if !ok {
			t = &thread{}
			threads[other] = t
			order = append(order, other)
		}
		if t.last == nil || msg.CreatedAt.After(t.last.CreatedAt) {
			t.last = msg
		}
		if msg.RecipientID == userID && !msg.Read {
			t.unread++
		}
	}

	names := map[uuid.UUID]*models.User{}
	if len(order) > 0 {
		names, err = s.users.FindByIDs(ctx, order)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load counterparties")
		}
	}

	out := make([]ConversationDTO, 0, len(order))
	for _, other := range order {
		t := threads[other]
		dto := ConversationDTO{
			CounterpartyID: other,
			LastMessage:    *FromModel(t.last),
			UnreadCount:    t.unread,
		}
		if u, ok := names[other]; ok {
			dto.CounterpartyName = displayName(u)
		}
		out = append(out, dto)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})
	return out, nil
}

// OpenConversation marks the counterparty's messages read, then returns the
// full thread in chronological order.
func (s *service) OpenConversation(ctx context.Context, userID, otherID uuid.UUID) ([]MessageDTO, error) {
	if _, err := s.repo.MarkConversationRead(ctx, userID, otherID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark conversation read")
	}

	items, err := s.repo.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list conversation")
	}
	return FromModels(items), nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unread")
	}
	return count, nil
}

func displayName(u *models.User) string {
	if u.IsFarmer && u.CompanyName != "" {
		return u.CompanyName
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
