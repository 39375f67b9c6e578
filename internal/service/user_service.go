package service

import (
	"context"
	"fmt"
	"log"
	"unicode"

	"github.com/google/uuid"

	"docvault-web-server/config"
	"docvault-web-server/internal/model"
	"docvault-web-server/internal/ports"
	"docvault-web-server/internal/quota"
	"docvault-web-server/internal/security"
	"docvault-web-server/internal/util"
)

type UserService struct {
	userRepository   ports.UserRepository
	jwtService       ports.JWTServiceInterface
	jwtRepository    ports.JWTRepositoryInterface
	storageInterface ports.S3Storage
	adminToken       *config.AdminConfig
	quotaCfg         *config.QuotaConfig
}

func NewUserService(
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	jwtRepository ports.JWTRepositoryInterface,
	storageInterface ports.S3Storage,
	adminToken *config.AdminConfig,
	quotaCfg *config.QuotaConfig,
) *UserService {
	return &UserService{
		userRepository:   userRepository,
		jwtService:       jwtService,
		jwtRepository:    jwtRepository,
		storageInterface: storageInterface,
		adminToken:       adminToken,
		quotaCfg:         quotaCfg,
	}
}

func (s *UserService) Register(ctx context.Context, adminToken string, login string, password string, ipAddress string) (*model.TokensPair, error) {
	if s.adminToken == nil || adminToken != s.adminToken.AdminToken {
		return nil, fmt.Errorf("[UserService] неверный токен администратора: %w", util.ErrUnauthenticated)
	}

	if len(login) < 8 {
		return nil, fmt.Errorf("[UserService] логин должен быть не меньше 8 символов: %w", util.ErrValidation)
	}
	for _, c := range login {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return nil, fmt.Errorf("[UserService] логин должен содержать только латинские буквы и цифры: %w", util.ErrValidation)
		}
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("[UserService] %w: %w", err, util.ErrValidation)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Login:        login,
		PasswordHash: hash,
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	created, err := s.userRepository.CreateUser(ctx, db, user)
	if err != nil {
		return nil, fmt.Errorf("[UserService] ошибка создания пользователя: %w", err)
	}

	tokens, refreshToken, err := s.jwtService.GenerateAccessRefreshTokens(created.UUID)
	if err != nil {
		return nil, fmt.Errorf("[UserService] ошибка генерации токенов: %w", err)
	}

	refreshToken.IpAddress = ipAddress
	if err := s.jwtRepository.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("[UserService] не удалось сохранить refresh токен: %w", err)
	}

	return tokens, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount int
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 || digitCount == 0 {
		return fmt.Errorf("пароль должен содержать заглавные и строчные буквы и цифры")
	}

	return nil
}

func (s *UserService) GetUser(ctx context.Context, userUUID string) (*model.User, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	return s.userRepository.FindByUUID(ctx, db, userUUID)
}

// UpdatePassword : меняет пароль и отзывает все сессии пользователя
func (s *UserService) UpdatePassword(ctx context.Context, userUUID string, newPassword string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	if err := validatePassword(newPassword); err != nil {
		return fmt.Errorf("[UserService] %w: %w", err, util.ErrValidation)
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("[UserService] не удалось создать хэш пароля: %w", err)
	}

	if err := s.userRepository.UpdatePassword(ctx, db, userUUID, hash); err != nil {
		return err
	}

	if err := s.jwtRepository.RevokeAllForUser(ctx, userUUID); err != nil {
		log.Printf("[UserService] не удалось отозвать сессии пользователя %s: %v", userUUID, err)
	}

	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, userUUID string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	user, err := s.userRepository.FindByUUID(ctx, db, userUUID)
	if err != nil {
		return err
	}

	// объекты чистим best-effort: запись пользователя удаляется в любом случае,
	// не удалённые объекты — долг на ручную уборку
	if user.ProfilePicturePath != nil {
		if err := s.storageInterface.DeleteObject(ctx, *user.ProfilePicturePath); err != nil {
			log.Printf("[UserService] не удалось удалить аватар %s: %v", *user.ProfilePicturePath, err)
		}
	}

	if err := s.jwtRepository.RevokeAllForUser(ctx, userUUID); err != nil {
		log.Printf("[UserService] не удалось отозвать сессии пользователя %s: %v", userUUID, err)
	}

	return s.userRepository.DeleteUser(ctx, db, userUUID)
}

func (s *UserService) ListUsers(ctx context.Context, adminToken string, cursor string, limit int) ([]*model.User, string, error) {
	if s.adminToken == nil || adminToken != s.adminToken.AdminToken {
		return nil, "", fmt.Errorf("[UserService] неверный токен администратора: %w", util.ErrForbidden)
	}

	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, "", fmt.Errorf("[UserService] database connection не найден в context")
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return s.userRepository.ListUsers(ctx, db, cursor, limit)
}

// ReplaceProfilePicture : сага замены аватара. Размер старого объекта берётся
// напрямую из хранилища (для singleton-ресурса источник истины о размере —
// S3, а не запись пользователя), дельта считается до проверки квоты, поэтому
// уменьшение файла квоту не задевает. Старый объект удаляется только после
// успешного обновления записи — сбой на последнем шаге не оставляет запись
// указывающей на удалённый объект.
func (s *UserService) ReplaceProfilePicture(ctx context.Context, userUUID string, input ports.ProfilePictureInput) (*model.SignedAccess, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return nil, fmt.Errorf("[UserService] database connection не найден в context")
	}

	newSize := int64(len(input.Data))
	if newSize == 0 {
		return nil, fmt.Errorf("[UserService] пустой файл: %w", util.ErrValidation)
	}
	if newSize > s.quotaCfg.MaxProfilePictureBytes {
		return nil, fmt.Errorf("[UserService] аватар больше %d байт: %w", s.quotaCfg.MaxProfilePictureBytes, util.ErrValidation)
	}

	user, err := s.userRepository.FindByUUID(ctx, db, userUUID)
	if err != nil {
		return nil, err
	}

	var oldSize int64
	var oldPath string
	if user.ProfilePicturePath != nil && *user.ProfilePicturePath != "" {
		oldPath = *user.ProfilePicturePath
		oldSize, err = s.storageInterface.StatObject(ctx, oldPath)
		if err != nil {
			// объекта уже нет — считаем, что он ничего не занимает
			log.Printf("[UserService] не удалось получить размер старого аватара %s: %v", oldPath, err)
			oldSize = 0
		}
	}

	delta := newSize - oldSize
	decision := quota.CheckAndReserve(user.TotalSize, delta, s.quotaCfg.MaxUserBytes)
	if !decision.Accepted {
		return nil, &util.QuotaExceededError{
			UsedBytes:      user.TotalSize,
			MaxBytes:       s.quotaCfg.MaxUserBytes,
			FileBytes:      newSize,
			AvailableBytes: decision.AvailableBytes,
		}
	}

	newPath := fmt.Sprintf("users/%s/profile/%s", userUUID, uuid.New().String())
	if err := s.storageInterface.UploadObject(ctx, newPath, input.Data, input.MimeType); err != nil {
		return nil, util.LogError("[UserService] не удалось записать аватар в S3", err)
	}

	access, err := s.storageInterface.IssueReadURL(ctx, newPath)
	if err != nil {
		return nil, util.LogError("[UserService] не удалось выписать ссылку на аватар", err)
	}

	if err := s.userRepository.SetProfilePicture(ctx, db, userUUID, newPath, access.URL, delta); err != nil {
		return nil, util.LogError("[UserService] не удалось обновить запись пользователя", err)
	}

	if oldPath != "" && oldPath != newPath {
		if err := s.storageInterface.DeleteObject(ctx, oldPath); err != nil {
			log.Printf("[UserService] не удалось удалить старый аватар %s: %v", oldPath, err)
		}
	}

	log.Printf("[UserService] аватар пользователя %s заменён (%d байт)", userUUID, newSize)

	return access, nil
}

// SetMasterPin : задаёт общий PIN для неавторизованного чтения.
// Пустой PIN сбрасывает настройку — PIN-доступ при этом запрещён.
func (s *UserService) SetMasterPin(ctx context.Context, userUUID string, pin string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if !ok {
		return fmt.Errorf("[UserService] database connection не найден в context")
	}

	if pin == "" {
		return s.userRepository.SetMasterPin(ctx, db, userUUID, nil)
	}

	if len(pin) < 4 || len(pin) > 8 {
		return fmt.Errorf("[UserService] PIN должен быть от 4 до 8 цифр: %w", util.ErrValidation)
	}
	for _, c := range pin {
		if !unicode.IsDigit(c) {
			return fmt.Errorf("[UserService] PIN должен состоять из цифр: %w", util.ErrValidation)
		}
	}

	return s.userRepository.SetMasterPin(ctx, db, userUUID, &pin)
}
