package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"freight/models"
)

// Агрегат ставки: автор, его организация и пользователь, менявший статус
const bidSelect = `
    SELECT
        b.id, b.application_id, b.status, b.created_at, b.updated_at,
        u.id AS from_user_id, u.first_name AS from_first_name, u.last_name AS from_last_name,
        o.id AS organization_id, o.uin AS organization_uin, o.name AS organization_name,
        ub.id AS updated_by_id, ub.first_name AS updated_by_first_name, ub.last_name AS updated_by_last_name
    FROM bids b
    JOIN users u ON u.id = b.user_id
    LEFT JOIN organizations o ON o.id = b.organization_id
    LEFT JOIN users ub ON ub.id = b.updated_by_id`

// Для списка ставок updated_by не нужен, join на users один
const bidListSelect = `
    SELECT
        b.id, b.application_id, b.status, b.created_at, b.updated_at,
        u.id AS from_user_id, u.first_name AS from_first_name, u.last_name AS from_last_name,
        o.id AS organization_id, o.uin AS organization_uin, o.name AS organization_name
    FROM bids b
    JOIN users u ON u.id = b.user_id
    LEFT JOIN organizations o ON o.id = b.organization_id`

type bidRow struct {
	ID            int       `db:"id"`
	ApplicationID int       `db:"application_id"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	FromUserID    int    `db:"from_user_id"`
	FromFirstName string `db:"from_first_name"`
	FromLastName  string `db:"from_last_name"`

	OrganizationID   *int    `db:"organization_id"`
	OrganizationUIN  *string `db:"organization_uin"`
	OrganizationName *string `db:"organization_name"`

	UpdatedByID        *int    `db:"updated_by_id"`
	UpdatedByFirstName *string `db:"updated_by_first_name"`
	UpdatedByLastName  *string `db:"updated_by_last_name"`
}

func (r *bidRow) public() *models.BidPublic {
	bid := &models.BidPublic{
		ID:            r.ID,
		ApplicationID: r.ApplicationID,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		From: models.BidFrom{
			User: models.User{
				ID:        r.FromUserID,
				FirstName: r.FromFirstName,
				LastName:  r.FromLastName,
			},
		},
	}
	if r.OrganizationID != nil {
		org := &models.Organization{ID: *r.OrganizationID}
		if r.OrganizationUIN != nil {
			org.UIN = *r.OrganizationUIN
		}
		if r.OrganizationName != nil {
			org.Name = *r.OrganizationName
		}
		bid.From.Organization = org
	}
	if r.UpdatedByID != nil {
		updatedBy := &models.User{ID: *r.UpdatedByID}
		if r.UpdatedByFirstName != nil {
			updatedBy.FirstName = *r.UpdatedByFirstName
		}
		if r.UpdatedByLastName != nil {
			updatedBy.LastName = *r.UpdatedByLastName
		}
		bid.UpdatedBy = updatedBy
	}
	return bid
}

func composeBid(ctx context.Context, q querier, id int) (*models.BidPublic, error) {
	var row bidRow
	err := q.GetContext(ctx, &row, bidSelect+" WHERE b.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	bid := row.public()
	if err := validateRow(bid); err != nil {
		return nil, err
	}
	return bid, nil
}

func (s *Storage) GetBidByID(ctx context.Context, id int) (*models.BidPublic, error) {
	return composeBid(ctx, s.db, id)
}

// CreateBid вставляет ставку (статус по умолчанию pending) и собирает агрегат
// в той же транзакции. updated_by у свежей ставки всегда null.
func (s *Storage) CreateBid(ctx context.Context, dto *models.BidDTO) (*models.BidPublic, error) {
	var result *models.BidPublic
	err := s.db.InTransaction(ctx, func(tx *sqlx.Tx) error {
		var bidID int
		err := tx.QueryRowContext(ctx, `
            INSERT INTO bids (application_id, user_id, organization_id)
            VALUES ($1, $2, $3)
            RETURNING id`,
			dto.ApplicationID, dto.UserID, dto.OrganizationID).Scan(&bidID)
		if err != nil {
			return err
		}

		composed, err := composeBid(ctx, tx, bidID)
		if err != nil {
			return err
		}
		if composed == nil {
			return fmt.Errorf("bid %d vanished inside transaction", bidID)
		}
		result = composed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateBidStatus меняет статус без проверки текущего значения (переходы
// свободные). Ноль затронутых строк означает, что ставки нет, - возвращаем
// nil вместо молчаливого успеха.
func (s *Storage) UpdateBidStatus(ctx context.Context, id int, status string, updatedBy int) (*models.BidPublic, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE bids
        SET status = $1, updated_by_id = $2, updated_at = NOW()
        WHERE id = $3`,
		status, updatedBy, id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	return composeBid(ctx, s.db, id)
}

// GetBidsApplicationID возвращает ставки по заявке, свежие первыми
func (s *Storage) GetBidsApplicationID(ctx context.Context, applicationID int) ([]models.BidPublic, error) {
	rows := []bidRow{}
	query := bidListSelect + " WHERE b.application_id = $1 ORDER BY b.created_at DESC"
	if err := s.db.SelectContext(ctx, &rows, query, applicationID); err != nil {
		return nil, err
	}

	bids := make([]models.BidPublic, 0, len(rows))
	for i := range rows {
		bid := rows[i].public()
		if err := validateRow(bid); err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	return bids, nil
}
