package view

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
	"github.com/tran-matt/room-doc-tracker/internal/service"
)

var (
	errBoom  = errors.New("boom")
	fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	logger   = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func day(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeRooms struct {
	rooms      []*model.Room
	listErr    error
	createErr  error
	deleteErr  error
	created    []string
	deleted    []string
	onCreate   func()
	createCall int
}

func (f *fakeRooms) List(context.Context) ([]*model.Room, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rooms, nil
}

func (f *fakeRooms) Create(_ context.Context, name, location string) (*model.Room, error) {
	f.createCall++
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, name+"|"+location)
	return &model.Room{ID: "new", Name: name, Location: location, CreatedAt: fixedNow}, nil
}

func (f *fakeRooms) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeDocs — документы по комнатам; failRooms отвечают ошибкой.
type fakeDocs struct {
	mu        sync.Mutex
	byRoom    map[string][]*model.Document
	failRooms map[string]bool
	calls     int
}

func (f *fakeDocs) ListByRoom(_ context.Context, roomID string) ([]*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failRooms[roomID] {
		return nil, errBoom
	}
	return f.byRoom[roomID], nil
}

func (f *fakeDocs) Classify(d *model.Document, now time.Time) status.Status {
	return status.Classify(d.ExpirationDate, now, 30)
}

func (f *fakeDocs) Now() time.Time { return fixedNow }

type fakeUploader struct {
	inputs []service.UploadInput
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, in service.UploadInput) (*model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &model.Document{ID: "doc", RoomID: in.RoomID, Title: in.Title}, nil
}

func doc(id, roomID, expiration string) *model.Document {
	return &model.Document{ID: id, RoomID: roomID, Title: id, ExpirationDate: day(expiration)}
}
