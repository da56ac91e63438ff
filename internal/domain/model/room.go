package model

import "time"

// Room — отслеживаемое помещение, к которому привязаны документы.
// Хранится в таблице rooms.
type Room struct {
	// ID — UUID записи (назначается БД)
	ID string
	// Name — отображаемое имя, обязательно
	Name string
	// Location — свободное описание местоположения (может быть пустым)
	Location string
	// CreatedAt — время создания записи (назначается БД)
	CreatedAt time.Time
}
