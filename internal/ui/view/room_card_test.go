package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
)

func TestRoomCard_SetRoom(t *testing.T) {
	_, docs := newFixture()
	url := "http://storage/r1/gas.pdf"
	docs.byRoom["r1"][0].FileURL = &url

	c := NewRoomCard(docs, logger)
	c.SetRoom(context.Background(), &model.Room{ID: "r1", Name: "Boiler Room"})

	if c.LoadErr != nil {
		t.Fatalf("LoadErr = %v", c.LoadErr)
	}
	if c.Status != status.Expired {
		t.Errorf("Status = %s, ожидается expired", c.Status)
	}
	if len(c.Documents) != 2 {
		t.Fatalf("Documents = %d, ожидается 2", len(c.Documents))
	}

	gas := c.Documents[0]
	if gas.Status != status.Expired || gas.DaysLeft != -9 {
		t.Errorf("gas: %s, %d дней", gas.Status, gas.DaysLeft)
	}
	if gas.ThumbnailURL != "/ui/documents/gas/thumbnail" {
		t.Errorf("ThumbnailURL = %s", gas.ThumbnailURL)
	}
	if c.Documents[1].ThumbnailURL != PlaceholderImage {
		t.Errorf("документ без файла должен показывать заглушку, получено %s", c.Documents[1].ThumbnailURL)
	}
}

func TestRoomCard_EmptyRoomIsValid(t *testing.T) {
	_, docs := newFixture()
	c := NewRoomCard(docs, logger)
	c.SetRoom(context.Background(), &model.Room{ID: "r4"})

	if c.Status != status.Valid || len(c.Documents) != 0 {
		t.Errorf("пустая комната: %s, %d документов", c.Status, len(c.Documents))
	}
}

func TestRoomCard_LoadFailure(t *testing.T) {
	_, docs := newFixture()
	docs.failRooms = map[string]bool{"r1": true}
	c := NewRoomCard(docs, logger)
	c.SetRoom(context.Background(), &model.Room{ID: "r1"})

	if !errors.Is(c.LoadErr, errBoom) || len(c.Documents) != 0 {
		t.Errorf("LoadErr = %v, документов %d", c.LoadErr, len(c.Documents))
	}
}

func TestRoomCard_Uploaded(t *testing.T) {
	_, docs := newFixture()
	c := NewRoomCard(docs, logger)
	c.SetRoom(context.Background(), &model.Room{ID: "r4"})

	docs.mu.Lock()
	docs.byRoom["r4"] = []*model.Document{doc("new", "r4", "2026-03-15")}
	docs.mu.Unlock()

	if err := c.Uploaded(context.Background()); err != nil {
		t.Fatalf("Uploaded() ошибка: %v", err)
	}
	if len(c.Documents) != 1 || c.Status != status.ExpiringSoon {
		t.Errorf("после загрузки: %d документов, статус %s", len(c.Documents), c.Status)
	}
}

// blockingDocs задерживает ответ для комнаты slow до закрытия release.
type blockingDocs struct {
	fakeDocs
	started chan struct{}
	release chan struct{}
}

func (b *blockingDocs) ListByRoom(ctx context.Context, roomID string) ([]*model.Document, error) {
	if roomID == "slow" {
		close(b.started)
		<-b.release
	}
	return b.fakeDocs.ListByRoom(ctx, roomID)
}

func TestRoomCard_LatestRequestWins(t *testing.T) {
	docs := &blockingDocs{
		fakeDocs: fakeDocs{byRoom: map[string][]*model.Document{
			"slow": {doc("old", "slow", "2020-01-01")},
			"fast": {doc("lease", "fast", "2030-01-01")},
		}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := NewRoomCard(docs, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.SetRoom(context.Background(), &model.Room{ID: "slow"})
	}()

	select {
	case <-docs.started:
	case <-time.After(time.Second):
		t.Fatal("запрос для slow не начался")
	}

	c.SetRoom(context.Background(), &model.Room{ID: "fast"})
	close(docs.release)
	wg.Wait()

	if c.Room.ID != "fast" {
		t.Fatalf("Room = %s, ожидается fast", c.Room.ID)
	}
	if len(c.Documents) != 1 || c.Documents[0].Doc.ID != "lease" {
		t.Errorf("устаревший ответ перезаписал документы: %+v", c.Documents)
	}
	if c.Status != status.Valid {
		t.Errorf("Status = %s, ожидается valid", c.Status)
	}
}

func TestRoomCard_DeleteDelegates(t *testing.T) {
	rooms, docs := newFixture()
	list := NewRoomList(rooms, docs, 2, logger)
	list.Load(context.Background())

	c := NewRoomCard(docs, logger)
	c.OnDelete = list.Delete
	c.SetRoom(context.Background(), list.Rooms[0])

	if err := c.Delete(context.Background(), false); !errors.Is(err, ErrNotConfirmed) {
		t.Errorf("Delete без подтверждения = %v", err)
	}
	if err := c.Delete(context.Background(), true); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if len(rooms.deleted) != 1 || rooms.deleted[0] != "r1" || len(list.Rooms) != 3 {
		t.Errorf("удалено %v, в списке %d", rooms.deleted, len(list.Rooms))
	}
}
