package service

import (
	"context"
	"fmt"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/mapper"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService handles per-project discussion rooms
type ChatService struct {
	chatRepo    *repository.ChatRepository
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

func NewChatService(
	chatRepo *repository.ChatRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// resolveRoom checks project visibility and returns its chat room.
// Client sessions can only reach rooms of their own customer's projects.
func (s *ChatService) resolveRoom(ctx context.Context, projectID uuid.UUID, perm domain.Permission) (*domain.ChatRoom, error) {
	user, err := RequirePermission(ctx, perm)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if user.IsClient() {
		if user.CustomerID == nil || project.CustomerID == nil || *project.CustomerID != *user.CustomerID {
			return nil, ErrNotFound
		}
	}
	return s.chatRepo.GetOrCreateRoom(ctx, project.ID)
}

// ListMessages returns a project's chat history, oldest first
func (s *ChatService) ListMessages(ctx context.Context, projectID uuid.UUID, p repository.Pagination) (*domain.ListResponse[domain.ChatMessageDTO], error) {
	room, err := s.resolveRoom(ctx, projectID, domain.PermissionChatRead)
	if err != nil {
		return nil, err
	}
	p.Normalize()

	messages, total, err := s.chatRepo.ListMessages(ctx, room.ID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	// Resolve author names in one pass
	names := map[uuid.UUID]string{}
	resp := &domain.ListResponse[domain.ChatMessageDTO]{
		Items:      make([]domain.ChatMessageDTO, 0, len(messages)),
		TotalCount: total,
		Page:       p.Page,
		PageSize:   p.PageSize,
	}
	for i := range messages {
		dto := mapper.ToChatMessageDTO(&messages[i])
		name, ok := names[messages[i].UserID]
		if !ok {
			if u, err := s.userRepo.GetByID(ctx, messages[i].UserID); err == nil {
				name = u.Name
			}
			names[messages[i].UserID] = name
		}
		dto.UserName = name
		resp.Items = append(resp.Items, dto)
	}
	return resp, nil
}

// PostMessage appends a message to a project's room
func (s *ChatService) PostMessage(ctx context.Context, projectID uuid.UUID, req *domain.PostMessageRequest) (*domain.ChatMessageDTO, error) {
	room, err := s.resolveRoom(ctx, projectID, domain.PermissionChatWrite)
	if err != nil {
		return nil, err
	}
	user, err := RequirePermission(ctx, domain.PermissionChatWrite)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		RoomID: room.ID,
		UserID: user.UserID,
		Body:   req.Body,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}

	dto := mapper.ToChatMessageDTO(msg)
	dto.UserName = user.Name
	return &dto, nil
}
