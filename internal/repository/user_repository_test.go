package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault-web-server/config"
	"docvault-web-server/internal/model"
	"docvault-web-server/internal/repository"
	"docvault-web-server/internal/util"
)

func newMockDB(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()

	rawDB, mockSQL, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	return &config.Database{DB: sqlx.NewDb(rawDB, "sqlmock")}, mockSQL
}

func TestUserRepository_AppendDocument(t *testing.T) {
	db, mockSQL := newMockDB(t)
	repo := repository.NewUserRepository(db)

	descriptor := model.DocumentDescriptor{
		DocID:     "doc-1",
		DocName:   "report.pdf",
		DocSize:   1024,
		IsDocShow: true,
	}

	// дескриптор дописывается и счётчик растёт одним UPDATE
	mockSQL.ExpectExec(`UPDATE users\s+SET documents = documents \|\| \$2::jsonb,\s+total_size = total_size \+ \$3\s+WHERE uuid = \$1`).
		WithArgs("user-1", sqlmock.AnyArg(), int64(1024)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendDocument(context.Background(), db, "user-1", descriptor, 1024)

	require.NoError(t, err)
	require.NoError(t, mockSQL.ExpectationsWereMet())
}

func TestUserRepository_AppendDocument_UserNotFound(t *testing.T) {
	db, mockSQL := newMockDB(t)
	repo := repository.NewUserRepository(db)

	mockSQL.ExpectExec(`UPDATE users`).
		WithArgs("no-such-user", sqlmock.AnyArg(), int64(1024)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AppendDocument(context.Background(), db, "no-such-user", model.DocumentDescriptor{DocID: "doc-1"}, 1024)

	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestUserRepository_ReplaceDocuments(t *testing.T) {
	db, mockSQL := newMockDB(t)
	repo := repository.NewUserRepository(db)

	remaining := model.DescriptorList{{DocID: "doc-2", IsDocShow: true}}

	// GREATEST держит нижнюю границу счётчика на нуле
	mockSQL.ExpectExec(`UPDATE users\s+SET documents = \$2::jsonb,\s+total_size = GREATEST\(total_size \+ \$3, 0\)\s+WHERE uuid = \$1`).
		WithArgs("user-1", sqlmock.AnyArg(), int64(-2048)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceDocuments(context.Background(), db, "user-1", remaining, -2048)

	require.NoError(t, err)
	require.NoError(t, mockSQL.ExpectationsWereMet())
}

func TestUserRepository_FindByUUID_MixedDescriptorShapes(t *testing.T) {
	db, mockSQL := newMockDB(t)
	repo := repository.NewUserRepository(db)

	rows := sqlmock.NewRows([]string{
		"uuid", "login", "password_hash", "total_size", "documents",
		"profile_picture_path", "profile_picture_url", "master_pin", "created_at",
	}).AddRow(
		"user-1", "validlogin", "hash", int64(3072),
		[]byte(`["legacy-doc", {"docId": "doc-2", "docName": "report.pdf", "docSize": 1024, "isDocShow": true}]`),
		nil, nil, nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	)

	mockSQL.ExpectQuery(`SELECT uuid, login, password_hash, total_size, documents`).
		WithArgs("user-1").
		WillReturnRows(rows)

	user, err := repo.FindByUUID(context.Background(), db, "user-1")

	require.NoError(t, err)
	require.Len(t, user.Documents, 2)
	assert.True(t, user.Documents[0].Legacy)
	assert.Equal(t, "legacy-doc", user.Documents[0].DocID)
	assert.Equal(t, "doc-2", user.Documents[1].DocID)
	assert.Equal(t, int64(3072), user.TotalSize)
}

func TestUserRepository_FindByUUID_NotFound(t *testing.T) {
	db, mockSQL := newMockDB(t)
	repo := repository.NewUserRepository(db)

	mockSQL.ExpectQuery(`SELECT uuid, login, password_hash`).
		WithArgs("no-such-user").
		WillReturnRows(sqlmock.NewRows([]string{"uuid"}))

	_, err := repo.FindByUUID(context.Background(), db, "no-such-user")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestUserRepository_SetProfilePicture(t *testing.T) {
	db, mockSQL := newMockDB(t)
	repo := repository.NewUserRepository(db)

	mockSQL.ExpectExec(`UPDATE users\s+SET profile_picture_path = \$2,\s+profile_picture_url = \$3,\s+total_size = GREATEST\(total_size \+ \$4, 0\)\s+WHERE uuid = \$1`).
		WithArgs("user-1", "users/user-1/profile/avatar", "https://s3/avatar", int64(2097152)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetProfilePicture(context.Background(), db, "user-1", "users/user-1/profile/avatar", "https://s3/avatar", 2097152)

	require.NoError(t, err)
	require.NoError(t, mockSQL.ExpectationsWereMet())
}

func TestUserRepository_SetMasterPin(t *testing.T) {
	db, mockSQL := newMockDB(t)
	repo := repository.NewUserRepository(db)

	pin := "4821"
	mockSQL.ExpectExec(`UPDATE users SET master_pin = \$2 WHERE uuid = \$1`).
		WithArgs("user-1", pin).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetMasterPin(context.Background(), db, "user-1", &pin))

	// nil сбрасывает PIN
	mockSQL.ExpectExec(`UPDATE users SET master_pin = \$2 WHERE uuid = \$1`).
		WithArgs("user-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetMasterPin(context.Background(), db, "user-1", nil))
	require.NoError(t, mockSQL.ExpectationsWereMet())
}
