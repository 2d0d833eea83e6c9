package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"freight/models"
)

func newMockManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return &Manager{db: sqlx.NewDb(mockDB, "sqlmock"), log: zerolog.Nop()}, mock
}

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	manager, mock := newMockManager(t)
	return NewStorage(manager), mock
}

var applicationColumns = []string{
	"id", "phone", "comment", "status", "created_at", "updated_at", "updated_by",
	"user_first_name", "user_last_name",
	"organization_id", "organization_uin", "organization_name",
	"load_id", "weight", "length", "height", "width", "volume", "co_loading",
	"load_created_at", "load_updated_at", "load_type_id", "load_type_name",
	"payment_id", "currency_id", "amount", "prepayment",
	"payment_created_at", "payment_updated_at",
	"method_id", "method_name", "condition_id", "condition_name",
	"transport_id", "count", "transport_created_at", "transport_updated_at",
	"transport_type_id", "transport_type_name",
}

func applicationMockRows(id int) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(applicationColumns).AddRow(
		id, "+79998887766", nil, "draft", now, now, nil,
		"Иван", "Петров",
		nil, nil, nil,
		1, 1200.0, 2.4, 2.2, 2.45, 12.9, "take_load",
		now, now, 2, "Паллеты",
		1, 1, 45000.0, 0.5,
		now, now,
		1, "Наличные", 2, "При выгрузке",
		1, 2, now, now,
		3, "Рефрижератор",
	)
}

var bidColumns = []string{
	"id", "application_id", "status", "created_at", "updated_at",
	"from_user_id", "from_first_name", "from_last_name",
	"organization_id", "organization_uin", "organization_name",
	"updated_by_id", "updated_by_first_name", "updated_by_last_name",
}

var bidListColumns = bidColumns[:11]

func createApplicationDTO() *models.ApplicationDTO {
	return &models.ApplicationDTO{
		UserID: 1,
		Phone:  "+79998887766",
		Load: models.LoadDTO{
			TypeID: 2, Weight: 1200, Length: 2.4, Height: 2.2,
			Width: 2.45, Volume: 12.9, CoLoading: "take_load",
		},
		Payment: models.PaymentDTO{
			CurrencyID: 1, Amount: 45000, Prepayment: 0.5, MethodID: 1, ConditionID: 2,
		},
		Transport: models.TransportDTO{TypeID: 3, Count: 2},
	}
}

func TestInTransactionReturnsOriginalErrorAfterRollback(t *testing.T) {
	manager, mock := newMockManager(t)
	boom := errors.New("mid-transaction failure")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := manager.InTransaction(context.Background(), func(tx *sqlx.Tx) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTransactionCommitsOnSuccess(t *testing.T) {
	manager, mock := newMockManager(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := manager.InTransaction(context.Background(), func(tx *sqlx.Tx) error {
		return nil
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Ошибка после вставки груза: дочерние вставки не продолжаются, транзакция
// откатывается, исходная ошибка уходит наверх без изменений.
func TestCreateApplicationRollsBackWhenChildInsertFails(t *testing.T) {
	store, mock := newMockStorage(t)
	boom := errors.New("loads insert failed")

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO applications").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec("INSERT INTO loads").WillReturnError(boom)
	mock.ExpectRollback()

	app, err := store.CreateApplication(context.Background(), createApplicationDTO())

	require.Nil(t, app)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplicationCommitsAndComposes(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO applications").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec("INSERT INTO loads").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO transports").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM applications a").WithArgs(42).
		WillReturnRows(applicationMockRows(42))
	mock.ExpectCommit()

	app, err := store.CreateApplication(context.Background(), createApplicationDTO())

	require.NoError(t, err)
	require.Equal(t, 42, app.ID)
	require.Equal(t, "draft", app.Status)
	require.Equal(t, "take_load", app.Load.CoLoading)
	require.Equal(t, 0.5, app.Payment.Prepayment)
	require.Equal(t, 2, app.Transport.Count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetApplicationByIDNotFound(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectQuery("FROM applications a").WithArgs(99).
		WillReturnRows(sqlmock.NewRows(applicationColumns))

	app, err := store.GetApplicationByID(context.Background(), 99)

	require.NoError(t, err)
	require.Nil(t, app)
}

func TestCreateBidComposesInsideTransaction(t *testing.T) {
	store, mock := newMockStorage(t)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO bids").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("FROM bids b").WithArgs(7).
		WillReturnRows(sqlmock.NewRows(bidColumns).
			AddRow(7, 42, "pending", now, now, 5, "Олег", "Сидоров", nil, nil, nil, nil, nil, nil))
	mock.ExpectCommit()

	bid, err := store.CreateBid(context.Background(), &models.BidDTO{ApplicationID: 42, UserID: 5})

	require.NoError(t, err)
	require.Equal(t, 7, bid.ID)
	require.Equal(t, "pending", bid.Status)
	require.Nil(t, bid.UpdatedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Ноль затронутых строк: ставки нет, composeBid не вызывается
func TestUpdateBidStatusMissingBid(t *testing.T) {
	store, mock := newMockStorage(t)

	mock.ExpectExec("UPDATE bids").WithArgs("accepted", 11, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	bid, err := store.UpdateBidStatus(context.Background(), 7, "accepted", 11)

	require.NoError(t, err)
	require.Nil(t, bid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBidStatusRecomposesBid(t *testing.T) {
	store, mock := newMockStorage(t)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE bids").WithArgs("accepted", 11, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bids b").WithArgs(7).
		WillReturnRows(sqlmock.NewRows(bidColumns).
			AddRow(7, 42, "accepted", now, now, 5, "Олег", "Сидоров", nil, nil, nil, 11, "Анна", "Козлова"))

	bid, err := store.UpdateBidStatus(context.Background(), 7, "accepted", 11)

	require.NoError(t, err)
	require.Equal(t, "accepted", bid.Status)
	require.NotNil(t, bid.UpdatedBy)
	require.Equal(t, 11, bid.UpdatedBy.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Список ставок по заявке упорядочен по created_at DESC, свежие первыми
func TestGetBidsApplicationIDOrderedNewestFirst(t *testing.T) {
	store, mock := newMockStorage(t)
	newer := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	older := newer.Add(-48 * time.Hour)

	mock.ExpectQuery(`ORDER BY b\.created_at DESC`).WithArgs(42).
		WillReturnRows(sqlmock.NewRows(bidListColumns).
			AddRow(8, 42, "pending", newer, newer, 5, "Олег", "Сидоров", nil, nil, nil).
			AddRow(3, 42, "pending", older, older, 6, "Павел", "Смирнов", nil, nil, nil))

	bids, err := store.GetBidsApplicationID(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, 8, bids[0].ID)
	require.Equal(t, 3, bids[1].ID)
	require.True(t, bids[0].CreatedAt.After(bids[1].CreatedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}
