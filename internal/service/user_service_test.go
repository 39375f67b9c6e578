package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docvault-web-server/config"
	"docvault-web-server/internal/model"
	"docvault-web-server/internal/ports"
	"docvault-web-server/internal/security"
	"docvault-web-server/internal/service"
	"docvault-web-server/internal/util"
)

type MockJWTService struct{ mock.Mock }

func (m *MockJWTService) GenerateAccessRefreshTokens(userUUID string) (*model.TokensPair, *model.RefreshToken, error) {
	args := m.Called(userUUID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.TokensPair), args.Get(1).(*model.RefreshToken), args.Error(2)
}

func (m *MockJWTService) ValidateJWT(tokenString string, secret []byte) (*security.Claims, error) {
	args := m.Called(tokenString, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Claims), args.Error(1)
}

type MockJWTRepo struct{ mock.Mock }

func (m *MockJWTRepo) FindByUUID(ctx context.Context, uuid string) (*model.RefreshToken, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *MockJWTRepo) MarkRefreshTokenUsedByUUID(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

func (m *MockJWTRepo) SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockJWTRepo) RevokeAllForUser(ctx context.Context, userUUID string) error {
	return m.Called(ctx, userUUID).Error(0)
}

func newUserService(
	userRepo *MockUserRepository,
	jwtService *MockJWTService,
	jwtRepo *MockJWTRepo,
	storage *MockS3Storage,
) *service.UserService {
	adminConfig := &config.AdminConfig{AdminToken: "secret-admin-token"}
	return service.NewUserService(userRepo, jwtService, jwtRepo, storage, adminConfig, defaultQuotaConfig())
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name        string
		adminToken  string
		login       string
		password    string
		expectError error
	}{
		{
			name:        "invalid admin token",
			adminToken:  "wrong-token",
			login:       "validlogin",
			password:    "StrongPass123",
			expectError: util.ErrUnauthenticated,
		},
		{
			name:        "short login",
			adminToken:  "secret-admin-token",
			login:       "short",
			password:    "StrongPass123",
			expectError: util.ErrValidation,
		},
		{
			name:        "login with invalid chars",
			adminToken:  "secret-admin-token",
			login:       "invalid_!",
			password:    "StrongPass123",
			expectError: util.ErrValidation,
		},
		{
			name:        "password without digits",
			adminToken:  "secret-admin-token",
			login:       "validlogin",
			password:    "OnlyLetters",
			expectError: util.ErrValidation,
		},
		{
			name:        "password without upper case",
			adminToken:  "secret-admin-token",
			login:       "validlogin",
			password:    "weakpass123",
			expectError: util.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newUserService(new(MockUserRepository), new(MockJWTService), new(MockJWTRepo), new(MockS3Storage))

			_, err := svc.Register(testContext(), tt.adminToken, tt.login, tt.password, "127.0.0.1")
			assert.ErrorIs(t, err, tt.expectError)
		})
	}
}

func TestUserService_Register_Success(t *testing.T) {
	ctx := testContext()

	userRepo := new(MockUserRepository)
	jwtService := new(MockJWTService)
	jwtRepo := new(MockJWTRepo)

	userRepo.On("CreateUser", mock.Anything, mock.Anything, mock.Anything).
		Return(&model.User{UUID: "user-1", Login: "validlogin"}, nil)
	jwtService.On("GenerateAccessRefreshTokens", "user-1").
		Return(&model.TokensPair{AccessToken: "access", RefreshToken: "refresh"}, &model.RefreshToken{UUID: "rt-1"}, nil)
	jwtRepo.On("SaveRefreshToken", mock.Anything, mock.MatchedBy(func(token *model.RefreshToken) bool {
		return token.IpAddress == "127.0.0.1"
	})).Return(nil)

	svc := newUserService(userRepo, jwtService, jwtRepo, new(MockS3Storage))

	tokens, err := svc.Register(ctx, "secret-admin-token", "validlogin", "StrongPass123", "127.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, "access", tokens.AccessToken)
	jwtRepo.AssertExpectations(t)
}

func TestUserService_UpdatePassword_RevokesSessions(t *testing.T) {
	ctx := testContext()

	userRepo := new(MockUserRepository)
	jwtRepo := new(MockJWTRepo)

	userRepo.On("UpdatePassword", mock.Anything, mock.Anything, "user-1", mock.Anything).Return(nil)
	jwtRepo.On("RevokeAllForUser", mock.Anything, "user-1").Return(nil)

	svc := newUserService(userRepo, new(MockJWTService), jwtRepo, new(MockS3Storage))

	require.NoError(t, svc.UpdatePassword(ctx, "user-1", "NewStrongPass123"))
	jwtRepo.AssertExpectations(t)
}

func TestUserService_ReplaceProfilePicture(t *testing.T) {
	ctx := testContext()
	oldPath := "users/user-1/profile/old-avatar"

	userRepo := new(MockUserRepository)
	storage := new(MockS3Storage)

	userRepo.On("FindByUUID", mock.Anything, mock.Anything, "user-1").Return(&model.User{
		UUID:               "user-1",
		TotalSize:          10 << 20,
		ProfilePicturePath: &oldPath,
	}, nil)
	// старый аватар 1 MiB, новый 3 MiB: дельта +2 MiB
	storage.On("StatObject", mock.Anything, oldPath).Return(int64(1<<20), nil)
	storage.On("UploadObject", mock.Anything, mock.Anything, mock.Anything, "image/png").Return(nil)
	storage.On("IssueReadURL", mock.Anything, mock.Anything).
		Return(&model.SignedAccess{URL: "https://s3/avatar"}, nil)
	userRepo.On("SetProfilePicture", mock.Anything, mock.Anything, "user-1", mock.Anything, "https://s3/avatar", int64(2<<20)).Return(nil)
	storage.On("DeleteObject", mock.Anything, oldPath).Return(nil)

	svc := newUserService(userRepo, new(MockJWTService), new(MockJWTRepo), storage)

	access, err := svc.ReplaceProfilePicture(ctx, "user-1", ports.ProfilePictureInput{
		Filename: "avatar.png",
		MimeType: "image/png",
		Data:     make([]byte, 3<<20),
	})

	require.NoError(t, err)
	assert.Equal(t, "https://s3/avatar", access.URL)
	userRepo.AssertExpectations(t)
	// старый объект удалён после обновления записи
	storage.AssertCalled(t, "DeleteObject", mock.Anything, oldPath)
}

func TestUserService_ReplaceProfilePicture_TooLarge(t *testing.T) {
	svc := newUserService(new(MockUserRepository), new(MockJWTService), new(MockJWTRepo), new(MockS3Storage))

	_, err := svc.ReplaceProfilePicture(testContext(), "user-1", ports.ProfilePictureInput{
		Filename: "avatar.png",
		MimeType: "image/png",
		Data:     make([]byte, (2<<20)+1),
	})

	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestUserService_ReplaceProfilePicture_QuotaExceeded(t *testing.T) {
	ctx := testContext()

	userRepo := new(MockUserRepository)
	storage := new(MockS3Storage)

	// квота почти выбрана документами, аватара ещё нет
	userRepo.On("FindByUUID", mock.Anything, mock.Anything, "user-1").Return(&model.User{
		UUID:      "user-1",
		TotalSize: 52_000_000,
	}, nil)

	svc := newUserService(userRepo, new(MockJWTService), new(MockJWTRepo), storage)

	_, err := svc.ReplaceProfilePicture(ctx, "user-1", ports.ProfilePictureInput{
		Filename: "avatar.png",
		MimeType: "image/png",
		Data:     make([]byte, 1<<20),
	})

	var quotaErr *util.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	storage.AssertNotCalled(t, "UploadObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_ReplaceProfilePicture_ShrinkAlwaysAccepted(t *testing.T) {
	ctx := testContext()
	oldPath := "users/user-1/profile/old-avatar"

	userRepo := new(MockUserRepository)
	storage := new(MockS3Storage)

	// квота выбрана полностью, но новый аватар меньше старого
	userRepo.On("FindByUUID", mock.Anything, mock.Anything, "user-1").Return(&model.User{
		UUID:               "user-1",
		TotalSize:          52_428_800,
		ProfilePicturePath: &oldPath,
	}, nil)
	storage.On("StatObject", mock.Anything, oldPath).Return(int64(2<<20), nil)
	storage.On("UploadObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	storage.On("IssueReadURL", mock.Anything, mock.Anything).
		Return(&model.SignedAccess{URL: "https://s3/avatar"}, nil)
	userRepo.On("SetProfilePicture", mock.Anything, mock.Anything, "user-1", mock.Anything, mock.Anything, int64(-(1 << 20))).Return(nil)
	storage.On("DeleteObject", mock.Anything, oldPath).Return(nil)

	svc := newUserService(userRepo, new(MockJWTService), new(MockJWTRepo), storage)

	_, err := svc.ReplaceProfilePicture(ctx, "user-1", ports.ProfilePictureInput{
		Filename: "avatar.png",
		MimeType: "image/png",
		Data:     make([]byte, 1<<20),
	})

	require.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestUserService_SetMasterPin(t *testing.T) {
	tests := []struct {
		name        string
		pin         string
		expectError bool
	}{
		{name: "valid four digits", pin: "4821"},
		{name: "valid eight digits", pin: "48215793"},
		{name: "too short", pin: "123", expectError: true},
		{name: "too long", pin: "123456789", expectError: true},
		{name: "non-digits", pin: "12ab", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			if !tt.expectError {
				userRepo.On("SetMasterPin", mock.Anything, mock.Anything, "user-1", &tt.pin).Return(nil)
			}

			svc := newUserService(userRepo, new(MockJWTService), new(MockJWTRepo), new(MockS3Storage))

			err := svc.SetMasterPin(testContext(), "user-1", tt.pin)
			if tt.expectError {
				assert.ErrorIs(t, err, util.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserService_SetMasterPin_EmptyClears(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("SetMasterPin", mock.Anything, mock.Anything, "user-1", (*string)(nil)).Return(nil)

	svc := newUserService(userRepo, new(MockJWTService), new(MockJWTRepo), new(MockS3Storage))

	require.NoError(t, svc.SetMasterPin(testContext(), "user-1", ""))
	userRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser_CleansUpAvatar(t *testing.T) {
	ctx := testContext()
	avatarPath := "users/user-1/profile/avatar"

	userRepo := new(MockUserRepository)
	jwtRepo := new(MockJWTRepo)
	storage := new(MockS3Storage)

	userRepo.On("FindByUUID", mock.Anything, mock.Anything, "user-1").Return(&model.User{
		UUID:               "user-1",
		ProfilePicturePath: &avatarPath,
	}, nil)
	// сбой удаления аватара не прерывает удаление пользователя
	storage.On("DeleteObject", mock.Anything, avatarPath).Return(errors.New("s3 недоступен"))
	jwtRepo.On("RevokeAllForUser", mock.Anything, "user-1").Return(nil)
	userRepo.On("DeleteUser", mock.Anything, mock.Anything, "user-1").Return(nil)

	svc := newUserService(userRepo, new(MockJWTService), jwtRepo, storage)

	require.NoError(t, svc.DeleteUser(ctx, "user-1"))
	userRepo.AssertExpectations(t)
}

func TestUserService_ListUsers_RequiresAdminToken(t *testing.T) {
	svc := newUserService(new(MockUserRepository), new(MockJWTService), new(MockJWTRepo), new(MockS3Storage))

	_, _, err := svc.ListUsers(testContext(), "wrong-token", "", 50)
	assert.ErrorIs(t, err, util.ErrForbidden)
}
