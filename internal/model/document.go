package model

import "time"

// Document : авторитетная запись о загруженном документе.
// OwnerUUID и StoragePath неизменяемы после создания; DownloadURL — кэш,
// при каждом чтении выписывается свежая подписанная ссылка.
type Document struct {
	UUID             string    `db:"uuid" json:"uuid"`
	OwnerUUID        string    `db:"owner_uuid" json:"owner_uuid"`
	FilenameOriginal string    `db:"filename_original" json:"filename_original"`
	SizeBytes        int64     `db:"size_bytes" json:"size_bytes"`
	MimeType         string    `db:"mime_type" json:"mime_type"`
	StoragePath      string    `db:"storage_path" json:"storage_path"`
	DownloadURL      *string   `db:"download_url" json:"download_url,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// SignedAccess : подписанная ссылка на чтение одного объекта
type SignedAccess struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
