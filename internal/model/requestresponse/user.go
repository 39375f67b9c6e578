package requestresponse

import "docvault-web-server/internal/model"

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Token    string `json:"token" example:"fixed_admin_token"`
	Login    string `json:"login" example:"newuser123"`
	Password string `json:"password" example:"P@ssw0rd!"`
}

// RegisterData : данные успешной регистрации
type RegisterData struct {
	Login string `json:"login"`
}

// UserData : данные пользователя с текущим потреблением квоты
type UserData struct {
	UUID              string  `json:"uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Login             string  `json:"login" example:"user1234"`
	TotalSize         int64   `json:"total_size" example:"2097152"`
	UsedMB            float64 `json:"usedMB" example:"2"`
	MaxMB             float64 `json:"maxMB" example:"50"`
	ProfilePictureURL string  `json:"profile_picture_url,omitempty"`
}

// UpdatePasswordRequest : тело запроса
type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" example:"P@ssw0rd123"`
}

// SetPinRequest : тело запроса установки PIN; пустой PIN сбрасывает настройку
type SetPinRequest struct {
	Pin string `json:"pin" example:"4821"`
}

// ProfilePictureData : данные ответа на замену аватара
type ProfilePictureData struct {
	Access *model.SignedAccess `json:"access"`
}

// ListUsersData : данные ответа со списком пользователей
type ListUsersData struct {
	Users      []*model.User `json:"users"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
