package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
)

// DocumentRepository — интерфейс CRUD и поиска для таблицы documents.
type DocumentRepository interface {
	// ListByRoom возвращает документы комнаты по возрастанию даты истечения.
	ListByRoom(ctx context.Context, roomID string) ([]*model.Document, error)
	// Get возвращает документ по UUID.
	Get(ctx context.Context, id string) (*model.Document, error)
	// Create вставляет документ; ID и CreatedAt назначает БД.
	Create(ctx context.Context, doc *model.Document) error
	// Update применяет частичное обновление и возвращает итоговую запись.
	Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error)
	// Delete удаляет документ и возвращает удалённую запись.
	Delete(ctx context.Context, id string) (*model.Document, error)
	// SearchByTitle ищет по подстроке заголовка без учёта регистра.
	SearchByTitle(ctx context.Context, keyword string) ([]*model.Document, error)
	// ObjectKeysByRoom возвращает ключи объектов и миниатюр документов комнаты.
	ObjectKeysByRoom(ctx context.Context, roomID string) ([]string, error)
}

const documentColumns = `id, room_id, name, title, effective_date, expiration_date,
	file_url, object_key, thumbnail_key, content_type, created_at`

// documentRepo — реализация DocumentRepository.
type documentRepo struct {
	db DBTX
}

// NewDocumentRepository создаёт репозиторий документов.
func NewDocumentRepository(db DBTX) DocumentRepository {
	return &documentRepo{db: db}
}

// rowScanner — общий интерфейс pgx.Row и pgx.Rows для Scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	d := &model.Document{}
	err := row.Scan(
		&d.ID, &d.RoomID, &d.Name, &d.Title, &d.EffectiveDate, &d.ExpirationDate,
		&d.FileURL, &d.ObjectKey, &d.ThumbnailKey, &d.ContentType, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *documentRepo) queryDocuments(ctx context.Context, query string, args ...any) ([]*model.Document, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*model.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования документа: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *documentRepo) ListByRoom(ctx context.Context, roomID string) ([]*model.Document, error) {
	docs, err := r.queryDocuments(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE room_id = $1
		ORDER BY expiration_date ASC, created_at ASC`, roomID)
	if err != nil {
		if isInvalidText(err) {
			return []*model.Document{}, nil
		}
		return nil, fmt.Errorf("ошибка получения документов комнаты: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) Get(ctx context.Context, id string) (*model.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "ошибка получения документа")
	}
	return d, nil
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO documents (room_id, name, title, effective_date, expiration_date,
			file_url, object_key, thumbnail_key, content_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		doc.RoomID, doc.Name, doc.Title, doc.EffectiveDate, doc.ExpirationDate,
		doc.FileURL, doc.ObjectKey, doc.ThumbnailKey, doc.ContentType,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, doc.RoomID)
		}
		return fmt.Errorf("ошибка создания документа: %w", err)
	}
	return nil
}

func (r *documentRepo) Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}

	// Динамическое построение SET из заданных полей
	var sets []string
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.EffectiveDate != nil {
		add("effective_date", *patch.EffectiveDate)
	}
	if patch.ExpirationDate != nil {
		add("expiration_date", *patch.ExpirationDate)
	}
	if patch.FileURL != nil {
		add("file_url", *patch.FileURL)
	}

	query := fmt.Sprintf(`
		UPDATE documents
		SET %s
		WHERE id = $1
		RETURNING %s`, strings.Join(sets, ", "), documentColumns)

	d, err := scanDocument(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "ошибка обновления документа")
	}
	return d, nil
}

func (r *documentRepo) Delete(ctx context.Context, id string) (*model.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, `
		DELETE FROM documents
		WHERE id = $1
		RETURNING `+documentColumns, id))
	if err != nil {
		return nil, notFoundOr(err, "ошибка удаления документа")
	}
	return d, nil
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (r *documentRepo) SearchByTitle(ctx context.Context, keyword string) ([]*model.Document, error) {
	docs, err := r.queryDocuments(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE title ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY expiration_date ASC, created_at ASC`, escapeLike(keyword))
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска документов: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) ObjectKeysByRoom(ctx context.Context, roomID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT key FROM (
			SELECT object_key AS key FROM documents WHERE room_id = $1
			UNION ALL
			SELECT thumbnail_key FROM documents WHERE room_id = $1
		) k
		WHERE key IS NOT NULL AND key <> ''`, roomID)
	if err != nil {
		return nil, notFoundOr(err, "ошибка получения ключей объектов")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("ошибка сканирования ключа: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
