package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/objectstore"
	"github.com/tran-matt/room-doc-tracker/internal/repository"
)

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- fakeRooms: in-memory RoomRepository ---

type fakeRooms struct {
	mu      sync.Mutex
	rooms   []*model.Room
	seq     int
	err     error
	creates int
}

func (f *fakeRooms) List(context.Context) ([]*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := slices.Clone(f.rooms)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRooms) Create(_ context.Context, room *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.err != nil {
		return f.err
	}
	f.seq++
	room.ID = fmt.Sprintf("room-%d", f.seq)
	room.CreatedAt = time.Date(2026, 1, 1, 0, 0, f.seq, 0, time.UTC)
	cp := *room
	f.rooms = append(f.rooms, &cp)
	return nil
}

func (f *fakeRooms) Get(_ context.Context, id string) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rooms {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRooms) Update(_ context.Context, room *model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, r := range f.rooms {
		if r.ID == room.ID {
			r.Name, r.Location = room.Name, room.Location
			room.CreatedAt = r.CreatedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRooms) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, r := range f.rooms {
		if r.ID == id {
			f.rooms = slices.Delete(f.rooms, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- fakeDocs: in-memory DocumentRepository ---

type fakeDocs struct {
	mu        sync.Mutex
	docs      []*model.Document
	rooms     *fakeRooms
	seq       int
	err       error
	createErr error
	listCalls int
}

func (f *fakeDocs) ListByRoom(_ context.Context, roomID string) ([]*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := []*model.Document{}
	for _, d := range f.docs {
		if d.RoomID == roomID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpirationDate.Before(out[j].ExpirationDate) })
	return out, nil
}

func (f *fakeDocs) Get(_ context.Context, id string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range f.docs {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDocs) Create(ctx context.Context, doc *model.Document) error {
	if f.rooms != nil {
		if _, err := f.rooms.Get(ctx, doc.RoomID); err != nil {
			return repository.ErrRoomNotFound
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	doc.ID = fmt.Sprintf("doc-%d", f.seq)
	doc.CreatedAt = time.Now()
	cp := *doc
	f.docs = append(f.docs, &cp)
	return nil
}

func (f *fakeDocs) Update(_ context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range f.docs {
		if d.ID != id {
			continue
		}
		if patch.Title != nil {
			d.Title = *patch.Title
		}
		if patch.Name != nil {
			d.Name = *patch.Name
		}
		if patch.EffectiveDate != nil {
			d.EffectiveDate = *patch.EffectiveDate
		}
		if patch.ExpirationDate != nil {
			d.ExpirationDate = *patch.ExpirationDate
		}
		if patch.FileURL != nil {
			d.FileURL = patch.FileURL
		}
		cp := *d
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDocs) Delete(_ context.Context, id string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i, d := range f.docs {
		if d.ID == id {
			f.docs = slices.Delete(f.docs, i, i+1)
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDocs) SearchByTitle(_ context.Context, keyword string) ([]*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*model.Document{}
	for _, d := range f.docs {
		if strings.Contains(strings.ToLower(d.Title), strings.ToLower(keyword)) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpirationDate.Before(out[j].ExpirationDate) })
	return out, nil
}

func (f *fakeDocs) ObjectKeysByRoom(_ context.Context, roomID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, d := range f.docs {
		if d.RoomID != roomID {
			continue
		}
		for _, k := range []*string{d.ObjectKey, d.ThumbnailKey} {
			if k != nil {
				keys = append(keys, *k)
			}
		}
	}
	return keys, nil
}

// fakeRemover имитирует repository.RoomRemover: ключи + каскадное удаление.
type fakeRemover struct {
	rooms *fakeRooms
	docs  *fakeDocs
}

func (f *fakeRemover) Delete(ctx context.Context, id string) ([]string, error) {
	keys, _ := f.docs.ObjectKeysByRoom(ctx, id)
	if err := f.rooms.Delete(ctx, id); err != nil {
		return nil, err
	}
	f.docs.mu.Lock()
	f.docs.docs = slices.DeleteFunc(f.docs.docs, func(d *model.Document) bool { return d.RoomID == id })
	f.docs.mu.Unlock()
	return keys, nil
}

// --- fakeStorage: in-memory ObjectStorage ---

type storedObject struct {
	data        []byte
	contentType string
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string]storedObject
	putErr    error
	urlErr    error
	removeErr error
	removed   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]storedObject{}}
}

func (f *fakeStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = storedObject{data: data, contentType: contentType}
	return nil
}

func (f *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key]
	if !ok {
		return nil, "", objectstore.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

func (f *fakeStorage) Remove(_ context.Context, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeStorage) RemovePrefix(_ context.Context, prefix string) (int, error) {
	if f.removeErr != nil {
		return 0, f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			delete(f.objects, k)
			f.removed = append(f.removed, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeStorage) PublicURL(key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "http://storage.test/room-documents/" + key, nil
}

func (f *fakeStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
