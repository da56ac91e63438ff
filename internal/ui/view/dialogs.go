package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/service"
)

// FocusDelay — задержка фокуса первого поля после показа диалога.
const FocusDelay = 100 * time.Millisecond

// dialogError — ошибка диалога с ключом сообщения для пользователя.
type dialogError struct {
	key string
	err error
}

func (e *dialogError) Error() string {
	if e.err != nil {
		return e.key + ": " + e.err.Error()
	}
	return e.key
}

func (e *dialogError) Unwrap() error { return e.err }

// dialogState — общее состояние модальных диалогов.
type dialogState struct {
	// Visible — диалог открыт
	Visible bool
	// Loading — идёт отправка (true только на время Submit)
	Loading bool
	// Error — ключ сообщения об ошибке, пусто если ошибки нет
	Error string
	// FocusField — поле, получающее фокус после открытия
	FocusField string
}

// DismissError скрывает сообщение об ошибке.
func (s *dialogState) DismissError() {
	s.Error = ""
}

// Close закрывает диалог.
func (s *dialogState) Close() {
	s.Visible = false
}

// fail сохраняет ошибку в состоянии; диалог остаётся открытым.
func (s *dialogState) fail(key string, err error) error {
	s.Error = key
	return &dialogError{key: key, err: err}
}

// RoomCreator — создание комнаты.
type RoomCreator interface {
	Create(ctx context.Context, name, location string) (*model.Room, error)
}

// RoomDialog — диалог создания комнаты.
type RoomDialog struct {
	dialogState

	Name     string
	Location string

	// OnCreated вызывается с созданной комнатой после успешной отправки.
	OnCreated func(room *model.Room)

	rooms  RoomCreator
	logger *slog.Logger
}

// NewRoomDialog создаёт закрытый диалог создания комнаты.
func NewRoomDialog(rooms RoomCreator, logger *slog.Logger) *RoomDialog {
	return &RoomDialog{
		rooms:  rooms,
		logger: logger.With(slog.String("component", "ui.room_dialog")),
	}
}

// Open показывает диалог со сброшенными полями.
func (d *RoomDialog) Open() {
	d.Name, d.Location = "", ""
	d.Error = ""
	d.Loading = false
	d.FocusField = "name"
	d.Visible = true
}

// Submit проверяет и отправляет форму. Пустое имя отклоняется без
// обращения к хранилищу. При ошибке значения полей сохраняются.
func (d *RoomDialog) Submit(ctx context.Context) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return d.fail(MsgRoomNameRequired, nil)
	}

	d.Loading = true
	d.Error = ""
	defer func() { d.Loading = false }()

	room, err := d.rooms.Create(ctx, name, strings.TrimSpace(d.Location))
	if err != nil {
		d.logger.Error("Ошибка создания комнаты", slog.String("error", err.Error()))
		return d.fail(MsgRoomCreateFailed, err)
	}

	if d.OnCreated != nil {
		d.OnCreated(room)
	}
	d.Close()
	return nil
}

// UploadFile — выбранный пользователем файл.
type UploadFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadDialog — диалог загрузки документа в комнату.
type UploadDialog struct {
	dialogState

	RoomID         string
	Title          string
	EffectiveDate  string
	ExpirationDate string
	File           *UploadFile

	// OnUploaded вызывается после успешной загрузки (обычно RoomCard.Uploaded).
	OnUploaded func(ctx context.Context) error

	docs   DocumentUploader
	logger *slog.Logger
}

// NewUploadDialog создаёт закрытый диалог загрузки для комнаты.
func NewUploadDialog(roomID string, docs DocumentUploader, logger *slog.Logger) *UploadDialog {
	return &UploadDialog{
		RoomID: roomID,
		docs:   docs,
		logger: logger.With(slog.String("component", "ui.upload_dialog")),
	}
}

// Open показывает диалог со сброшенными полями.
func (d *UploadDialog) Open() {
	d.Title, d.EffectiveDate, d.ExpirationDate = "", "", ""
	d.File = nil
	d.Error = ""
	d.Loading = false
	d.FocusField = "title"
	d.Visible = true
}

// Submit проверяет поля (все обязательны, включая файл), разбирает даты
// YYYY-MM-DD и загружает документ.
func (d *UploadDialog) Submit(ctx context.Context) error {
	if strings.TrimSpace(d.Title) == "" || d.EffectiveDate == "" || d.ExpirationDate == "" || d.File == nil {
		return d.fail(MsgUploadFieldsNeeded, nil)
	}

	effective, err := model.ParseDate(d.EffectiveDate)
	if err != nil {
		return d.fail(MsgInvalidDate, fmt.Errorf("effective_date: %w", err))
	}
	expiration, err := model.ParseDate(d.ExpirationDate)
	if err != nil {
		return d.fail(MsgInvalidDate, fmt.Errorf("expiration_date: %w", err))
	}

	d.Loading = true
	d.Error = ""
	defer func() { d.Loading = false }()

	_, err = d.docs.Upload(ctx, service.UploadInput{
		RoomID:         d.RoomID,
		Title:          strings.TrimSpace(d.Title),
		EffectiveDate:  effective,
		ExpirationDate: expiration,
		Filename:       d.File.Name,
		ContentType:    d.File.ContentType,
		Body:           d.File.Body,
	})
	if err != nil {
		d.logger.Error("Ошибка загрузки документа",
			slog.String("room_id", d.RoomID),
			slog.String("error", err.Error()),
		)
		return d.fail(MsgUploadFailed, err)
	}

	if d.OnUploaded != nil {
		if err := d.OnUploaded(ctx); err != nil {
			return d.fail(MsgUploadFailed, err)
		}
	}
	d.Close()
	return nil
}
