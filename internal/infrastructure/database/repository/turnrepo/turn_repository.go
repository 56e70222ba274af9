package turnrepo

import (
	"context"

	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/database/dbschema"
	"github.com/rocketman0418/astra-chats/internal/infrastructure/database/transaction"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

type TurnGormRepository struct {
	db *transaction.Database
}

var _ chat.TurnRepository = (*TurnGormRepository)(nil)

func NewTurnGormRepository(db *transaction.Database) chat.TurnRepository {
	return &TurnGormRepository{db}
}

// Insert implements chat.TurnRepository.
func (repo *TurnGormRepository) Insert(ctx context.Context, turn *chat.Turn) error {
	row, err := dbschema.NewSchemaChatTurn(turn)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to encode chat turn")
	}
	if err := repo.db.GetTx(ctx).WithContext(ctx).Create(row).Error; err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to insert chat turn")
	}
	// Update the domain object with generated ID and timestamp
	turn.ID = row.ID
	turn.CreatedAt = row.CreatedAt
	return nil
}

// SelectByOwner implements chat.TurnRepository. Rows come back newest first.
func (repo *TurnGormRepository) SelectByOwner(ctx context.Context, ownerID string) ([]*chat.Turn, error) {
	var rows []*dbschema.ChatTurn
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to select chat turns by owner")
	}
	return repo.decode(ctx, rows)
}

// SelectByOwnerAndConversation implements chat.TurnRepository. Rows come back
// oldest first.
func (repo *TurnGormRepository) SelectByOwnerAndConversation(ctx context.Context, ownerID, conversationID string) ([]*chat.Turn, error) {
	var rows []*dbschema.ChatTurn
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Where("owner_id = ? AND conversation_id = ?", ownerID, conversationID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to select chat turns by conversation")
	}
	return repo.decode(ctx, rows)
}

// DeleteByOwnerAndConversation implements chat.TurnRepository.
func (repo *TurnGormRepository) DeleteByOwnerAndConversation(ctx context.Context, ownerID, conversationID string) error {
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Where("owner_id = ? AND conversation_id = ?", ownerID, conversationID).
		Delete(&dbschema.ChatTurn{}).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to delete conversation turns")
	}
	return nil
}

func (repo *TurnGormRepository) decode(ctx context.Context, rows []*dbschema.ChatTurn) ([]*chat.Turn, error) {
	turns := make([]*chat.Turn, 0, len(rows))
	for _, row := range rows {
		turn, err := row.EtoD()
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to decode chat turn")
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
