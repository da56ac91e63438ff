// Пакет objectstore — хранение файлов документов в S3-совместимом
// бакете (MinIO). Ключи объектов строятся по соглашению
// <room_id>/<unix_millis>-<имя файла>.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound — объект отсутствует в бакете.
var ErrObjectNotFound = errors.New("объект не найден")

// readPolicy — анонимное чтение объектов бакета, чтобы публичные URL открывались.
const readPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// NewClient создаёт MinIO-клиент со статическими учётными данными.
func NewClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
}

// Store — бакет документов.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// New создаёт Store. publicURL — базовый URL бакета без завершающего слэша.
func New(client *minio.Client, bucket, publicURL string, logger *slog.Logger) *Store {
	return &Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.With(slog.String("component", "objectstore")),
	}
}

// Bucket возвращает имя бакета.
func (s *Store) Bucket() string {
	return s.bucket
}

// EnsureBucket создаёт бакет при отсутствии и назначает политику публичного чтения.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("ошибка проверки бакета %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("ошибка создания бакета %s: %w", s.bucket, err)
		}
		s.logger.Info("Бакет создан", slog.String("bucket", s.bucket))
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(readPolicy, s.bucket)); err != nil {
		return fmt.Errorf("ошибка назначения политики бакета %s: %w", s.bucket, err)
	}
	return nil
}

// Put загружает объект. size = -1 допускается для потоков неизвестной длины.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("ошибка загрузки объекта %s: %w", key, err)
	}
	return nil
}

// Get открывает объект для чтения и возвращает его MIME-тип.
// Вызывающий обязан закрыть reader.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", s.mapError(key, err)
	}

	// GetObject ленивый — ошибка отсутствия объекта приходит из Stat
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, "", s.mapError(key, err)
	}
	return obj, info.ContentType, nil
}

// Remove удаляет объект. Отсутствие объекта ошибкой не считается.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("ошибка удаления объекта %s: %w", key, err)
	}
	return nil
}

// RemovePrefix удаляет все объекты с префиксом (например, все файлы комнаты).
// Возвращает количество удалённых объектов.
func (s *Store) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var listErr error
	toRemove := make(chan minio.ObjectInfo)
	go func() {
		defer close(toRemove)
		for obj := range objects {
			if obj.Err != nil {
				listErr = obj.Err
				return
			}
			toRemove <- obj
		}
	}()

	removed := 0
	var firstErr error
	for rErr := range s.client.RemoveObjectsWithResult(ctx, s.bucket, toRemove, minio.RemoveObjectsOptions{}) {
		if rErr.Err != nil {
			if firstErr == nil {
				firstErr = rErr.Err
			}
			continue
		}
		removed++
	}

	if listErr != nil {
		return removed, fmt.Errorf("ошибка получения списка объектов %s: %w", prefix, listErr)
	}
	if firstErr != nil {
		return removed, fmt.Errorf("ошибка удаления объектов %s: %w", prefix, firstErr)
	}
	return removed, nil
}

// PublicURL возвращает публичный URL объекта.
func (s *Store) PublicURL(key string) (string, error) {
	if key == "" {
		return "", errors.New("пустой ключ объекта")
	}
	u, err := url.JoinPath(s.publicURL, strings.Split(key, "/")...)
	if err != nil {
		return "", fmt.Errorf("ошибка формирования URL для %s: %w", key, err)
	}
	return u, nil
}

// readyTimeout — таймаут проверки доступности бакета.
const readyTimeout = 3 * time.Second

// CheckReady проверяет доступность бакета для readiness probe.
// Возвращает "ok" или "fail" с сообщением.
func (s *Store) CheckReady() (string, string) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "fail", "хранилище недоступно: " + err.Error()
	}
	if !exists {
		return "fail", fmt.Sprintf("бакет %s не найден", s.bucket)
	}
	return "ok", ""
}

func (s *Store) mapError(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return fmt.Errorf("ошибка чтения объекта %s: %w", key, err)
}

// --- Ключи объектов ---

// RoomPrefix — префикс всех объектов комнаты.
func RoomPrefix(roomID string) string {
	return roomID + "/"
}

// ObjectKey строит ключ загруженного файла: <room_id>/<unix_millis>-<имя>.
func ObjectKey(roomID, filename string, at time.Time) string {
	return RoomPrefix(roomID) + strconv.FormatInt(at.UnixMilli(), 10) + "-" + SanitizeFilename(filename)
}

// ThumbnailKey строит ключ миниатюры: <room_id>/thumbs/<unix_millis>-<основа>.jpg.
func ThumbnailKey(roomID, filename string, at time.Time) string {
	base := SanitizeFilename(filename)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" {
		base = "file"
	}
	return RoomPrefix(roomID) + "thumbs/" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + base + ".jpg"
}

// SanitizeFilename оставляет базовое имя файла и заменяет небезопасные
// символы на '_'. Пустое имя превращается в "file".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		name = ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
