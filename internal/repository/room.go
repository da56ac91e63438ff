package repository

import (
	"context"
	"fmt"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
)

// RoomRepository — интерфейс CRUD для таблицы rooms.
type RoomRepository interface {
	// List возвращает все комнаты, новые первыми.
	List(ctx context.Context) ([]*model.Room, error)
	// Create вставляет комнату; ID и CreatedAt назначает БД.
	Create(ctx context.Context, room *model.Room) error
	// Get возвращает комнату по UUID.
	Get(ctx context.Context, id string) (*model.Room, error)
	// Update заменяет имя и местоположение.
	Update(ctx context.Context, room *model.Room) error
	// Delete удаляет комнату; документы удаляются каскадно.
	Delete(ctx context.Context, id string) error
}

// roomRepo — реализация RoomRepository.
type roomRepo struct {
	db DBTX
}

// NewRoomRepository создаёт репозиторий комнат.
func NewRoomRepository(db DBTX) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) List(ctx context.Context) ([]*model.Room, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, location, created_at
		FROM rooms
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка комнат: %w", err)
	}
	defer rows.Close()

	result := []*model.Room{}
	for rows.Next() {
		room := &model.Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.Location, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования комнаты: %w", err)
		}
		result = append(result, room)
	}
	return result, rows.Err()
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO rooms (name, location)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		room.Name, room.Location,
	).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания комнаты: %w", err)
	}
	return nil
}

func (r *roomRepo) Get(ctx context.Context, id string) (*model.Room, error) {
	room := &model.Room{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, location, created_at
		FROM rooms
		WHERE id = $1`, id,
	).Scan(&room.ID, &room.Name, &room.Location, &room.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err, "ошибка получения комнаты")
	}
	return room, nil
}

func (r *roomRepo) Update(ctx context.Context, room *model.Room) error {
	err := r.db.QueryRow(ctx, `
		UPDATE rooms
		SET name = $2, location = $3
		WHERE id = $1
		RETURNING created_at`,
		room.ID, room.Name, room.Location,
	).Scan(&room.CreatedAt)
	if err != nil {
		return notFoundOr(err, "ошибка обновления комнаты")
	}
	return nil
}

func (r *roomRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err, "ошибка удаления комнаты")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RoomRemover удаляет комнату вместе с документами в одной транзакции
// и возвращает ключи объектов, которые нужно убрать из хранилища.
type RoomRemover struct {
	tx *TxRunner
}

// NewRoomRemover создаёт RoomRemover поверх TxRunner.
func NewRoomRemover(tx *TxRunner) *RoomRemover {
	return &RoomRemover{tx: tx}
}

// Delete удаляет комнату. Ключи собираются до удаления строк,
// документы удаляются каскадом внешнего ключа.
func (r *RoomRemover) Delete(ctx context.Context, id string) ([]string, error) {
	var keys []string
	err := r.tx.RunInTx(ctx, func(tx DBTX) error {
		var err error
		keys, err = NewDocumentRepository(tx).ObjectKeysByRoom(ctx, id)
		if err != nil {
			return err
		}
		return NewRoomRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
