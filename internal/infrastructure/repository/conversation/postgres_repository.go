package conversation

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "jan-server/services/report-api/internal/domain/conversation"
	"jan-server/services/report-api/internal/infrastructure/database/entities"
	"jan-server/services/report-api/internal/utils/idgen"
	"jan-server/services/report-api/internal/utils/platformerrors"
)

// PostgresRepository persists conversation messages via GORM.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts msg under a transaction-scoped advisory lock on the
// conversation id so the timestamp check and insert are atomic.
func (r *PostgresRepository) Append(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	stored := msg.Clone()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", msg.ConversationID).Error; err != nil {
			return err
		}

		var last entities.Message
		err := latestMessage(tx, msg.ConversationID).Take(&last).Error
		switch {
		case err == nil:
			if stored.Timestamp.Before(last.SentAt) {
				stored.Timestamp = last.SentAt.UTC()
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if stored.ID == "" {
			stored.ID = idgen.NewMessageIDAfter(last.PublicID)
		}

		entity, err := mapMessageToEntity(stored)
		if err != nil {
			return err
		}
		return tx.Create(entity).Error
	})
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to append message", err, "conversation-repo-append-001")
	}
	return stored, nil
}

// List returns the conversation in insertion order.
func (r *PostgresRepository) List(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	var rows []entities.Message
	if err := conversationMessages(r.db.WithContext(ctx), conversationID).Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list messages", err, "conversation-repo-list-001")
	}

	out := make([]*domain.Message, 0, len(rows))
	for i := range rows {
		msg, err := mapMessageFromEntity(&rows[i])
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
				"failed to decode message metadata", err, "conversation-repo-list-002")
		}
		out = append(out, msg)
	}
	return out, nil
}

// Clear deletes every message of the conversation.
func (r *PostgresRepository) Clear(ctx context.Context, conversationID string) error {
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&entities.Message{}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to clear conversation", err, "conversation-repo-clear-001")
	}
	return nil
}

// conversationMessages orders by the serial id. Public ids come from each
// replica's clock and can disagree with insertion order.
func conversationMessages(db *gorm.DB, conversationID string) *gorm.DB {
	return db.Where("conversation_id = ?", conversationID).Order("id ASC")
}

func latestMessage(db *gorm.DB, conversationID string) *gorm.DB {
	return db.Where("conversation_id = ?", conversationID).Order("id DESC").Limit(1)
}

func mapMessageToEntity(msg *domain.Message) (*entities.Message, error) {
	var metadata datatypes.JSON
	if msg.Metadata != nil {
		raw, err := json.Marshal(msg.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = datatypes.JSON(raw)
	}
	return &entities.Message{
		PublicID:       msg.ID,
		ConversationID: msg.ConversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		Metadata:       metadata,
		SentAt:         msg.Timestamp,
	}, nil
}

func mapMessageFromEntity(entity *entities.Message) (*domain.Message, error) {
	msg := &domain.Message{
		ID:             entity.PublicID,
		ConversationID: entity.ConversationID,
		Role:           domain.Role(entity.Role),
		Content:        entity.Content,
		Timestamp:      entity.SentAt.UTC(),
	}
	if len(entity.Metadata) > 0 && string(entity.Metadata) != "null" {
		var md domain.Metadata
		if err := json.Unmarshal(entity.Metadata, &md); err != nil {
			return nil, err
		}
		msg.Metadata = &md
	}
	return msg, nil
}
