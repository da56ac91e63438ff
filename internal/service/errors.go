// errors.go — ошибки сервисного слоя (слоя доступа к данным).
package service

import (
	"errors"
	"fmt"

	"github.com/tran-matt/room-doc-tracker/internal/repository"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrStoreUnavailable — база данных недоступна или вернула ошибку.
	ErrStoreUnavailable = errors.New("хранилище метаданных недоступно")
	// ErrStorageUnavailable — объектное хранилище недоступно или вернуло ошибку.
	ErrStorageUnavailable = errors.New("объектное хранилище недоступно")
	// ErrUploadIncomplete — файл загружен, но запись не создана; файл удалён.
	ErrUploadIncomplete = errors.New("загрузка не завершена")
)

// Тексты ошибок валидации, которые видит пользователь.
const (
	MsgRoomNameRequired    = "room name is required"
	MsgUploadFieldsMissing = "all fields including file are required"
)

// validationError возвращает ошибку валидации с сообщением для пользователя.
func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// storeError классифицирует ошибку репозитория.
// repository.ErrNotFound и ErrRoomNotFound становятся ErrNotFound,
// остальное — ErrStoreUnavailable.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrRoomNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
}

// storageError оборачивает ошибку объектного хранилища.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
