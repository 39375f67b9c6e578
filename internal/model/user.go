package model

import "time"

type User struct {
	UUID         string `db:"uuid" json:"uuid"`
	Login        string `db:"login" json:"login"`
	PasswordHash string `db:"password_hash" json:"-"`

	// TotalSize : текущее потребление квоты в байтах (документы + аватар).
	// Производное значение, пересчитывается каждым мутирующим путём;
	// фоновый reconcile-воркер чинит дрейф после частичных сбоев.
	TotalSize int64 `db:"total_size" json:"total_size"`

	// Documents : денормализованный кэш дескрипторов, источник истины — таблица documents
	Documents DescriptorList `db:"documents" json:"documents"`

	ProfilePicturePath *string `db:"profile_picture_path" json:"-"`
	ProfilePictureURL  *string `db:"profile_picture_url" json:"profile_picture_url,omitempty"`

	// MasterPin : общий секрет для неавторизованного чтения по PIN;
	// если не задан, PIN-доступ запрещён
	MasterPin *string `db:"master_pin" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
