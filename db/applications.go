package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"freight/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Один запрос на весь агрегат: заявка, владелец, организация, груз, оплата,
// транспорт и их справочники.
const applicationSelect = `
    SELECT
        a.id, a.phone, a.comment, a.status, a.created_at, a.updated_at, a.updated_by,
        u.first_name AS user_first_name, u.last_name AS user_last_name,
        o.id AS organization_id, o.uin AS organization_uin, o.name AS organization_name,
        l.id AS load_id, l.weight, l.length, l.height, l.width, l.volume, l.co_loading,
        l.created_at AS load_created_at, l.updated_at AS load_updated_at,
        lt.id AS load_type_id, lt.name AS load_type_name,
        p.id AS payment_id, p.currency_id, p.amount, p.prepayment,
        p.created_at AS payment_created_at, p.updated_at AS payment_updated_at,
        pm.id AS method_id, pm.name AS method_name,
        pc.id AS condition_id, pc.name AS condition_name,
        t.id AS transport_id, t.count,
        t.created_at AS transport_created_at, t.updated_at AS transport_updated_at,
        tt.id AS transport_type_id, tt.name AS transport_type_name
    FROM applications a
    JOIN users u ON u.id = a.user_id
    LEFT JOIN organizations o ON o.id = a.organization_id
    JOIN loads l ON l.application_id = a.id
    JOIN load_types lt ON lt.id = l.type_id
    JOIN payments p ON p.application_id = a.id
    JOIN payment_methods pm ON pm.id = p.method_id
    JOIN payment_conditions pc ON pc.id = p.condition_id
    JOIN transports t ON t.application_id = a.id
    JOIN transport_types tt ON tt.id = t.type_id`

type applicationRow struct {
	ID        int       `db:"id"`
	Phone     string    `db:"phone"`
	Comment   *string   `db:"comment"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	UpdatedBy *int      `db:"updated_by"`

	UserFirstName string `db:"user_first_name"`
	UserLastName  string `db:"user_last_name"`

	OrganizationID   *int    `db:"organization_id"`
	OrganizationUIN  *string `db:"organization_uin"`
	OrganizationName *string `db:"organization_name"`

	LoadID        int       `db:"load_id"`
	Weight        float64   `db:"weight"`
	Length        float64   `db:"length"`
	Height        float64   `db:"height"`
	Width         float64   `db:"width"`
	Volume        float64   `db:"volume"`
	CoLoading     string    `db:"co_loading"`
	LoadCreatedAt time.Time `db:"load_created_at"`
	LoadUpdatedAt time.Time `db:"load_updated_at"`
	LoadTypeID    int       `db:"load_type_id"`
	LoadTypeName  string    `db:"load_type_name"`

	PaymentID        int       `db:"payment_id"`
	CurrencyID       int       `db:"currency_id"`
	Amount           float64   `db:"amount"`
	Prepayment       float64   `db:"prepayment"`
	PaymentCreatedAt time.Time `db:"payment_created_at"`
	PaymentUpdatedAt time.Time `db:"payment_updated_at"`
	MethodID         int       `db:"method_id"`
	MethodName       string    `db:"method_name"`
	ConditionID      int       `db:"condition_id"`
	ConditionName    string    `db:"condition_name"`

	TransportID        int       `db:"transport_id"`
	Count              int       `db:"count"`
	TransportCreatedAt time.Time `db:"transport_created_at"`
	TransportUpdatedAt time.Time `db:"transport_updated_at"`
	TransportTypeID    int       `db:"transport_type_id"`
	TransportTypeName  string    `db:"transport_type_name"`
}

func (r *applicationRow) public() *models.ApplicationPublic {
	app := &models.ApplicationPublic{
		ID:        r.ID,
		Phone:     r.Phone,
		Comment:   r.Comment,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		UpdatedBy: r.UpdatedBy,
		User: models.User{
			FirstName: r.UserFirstName,
			LastName:  r.UserLastName,
		},
		Load: models.LoadPublic{
			ID:        r.LoadID,
			Weight:    r.Weight,
			Length:    r.Length,
			Height:    r.Height,
			Width:     r.Width,
			Volume:    r.Volume,
			CoLoading: r.CoLoading,
			Type:      models.CatalogItem{ID: r.LoadTypeID, Name: r.LoadTypeName},
			CreatedAt: r.LoadCreatedAt,
			UpdatedAt: r.LoadUpdatedAt,
		},
		Payment: models.PaymentPublic{
			ID:         r.PaymentID,
			CurrencyID: r.CurrencyID,
			Amount:     r.Amount,
			Prepayment: r.Prepayment,
			Method:     models.CatalogItem{ID: r.MethodID, Name: r.MethodName},
			Condition:  models.CatalogItem{ID: r.ConditionID, Name: r.ConditionName},
			CreatedAt:  r.PaymentCreatedAt,
			UpdatedAt:  r.PaymentUpdatedAt,
		},
		Transport: models.TransportPublic{
			ID:        r.TransportID,
			Count:     r.Count,
			Type:      models.CatalogItem{ID: r.TransportTypeID, Name: r.TransportTypeName},
			CreatedAt: r.TransportCreatedAt,
			UpdatedAt: r.TransportUpdatedAt,
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
		app.Organization = org
	}
	return app
}

// composeApplication собирает агрегат заявки одним запросом. nil без ошибки,
// если заявки нет.
func composeApplication(ctx context.Context, q querier, id int) (*models.ApplicationPublic, error) {
	var row applicationRow
	err := q.GetContext(ctx, &row, applicationSelect+" WHERE a.id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	app := row.public()
	if err := validateRow(app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *Storage) GetApplicationByID(ctx context.Context, id int) (*models.ApplicationPublic, error) {
	return composeApplication(ctx, s.db, id)
}

// buildApplicationFilters собирает WHERE только из переданных фильтров
func buildApplicationFilters(f models.ApplicationFilters) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.UserID > 0 {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("a.user_id = $%d", len(args)))
	}
	if f.OrganizationID > 0 {
		args = append(args, f.OrganizationID)
		conds = append(conds, fmt.Sprintf("a.organization_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func normalizePagination(f models.ApplicationFilters) (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// GetApplications возвращает страницу агрегатов. Порядок фиксированный:
// created_at DESC, id DESC.
func (s *Storage) GetApplications(ctx context.Context, filters models.ApplicationFilters) ([]models.ApplicationPublic, error) {
	where, args := buildApplicationFilters(filters)
	limit, offset := normalizePagination(filters)

	query := applicationSelect + where + " ORDER BY a.created_at DESC, a.id DESC"
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows := []applicationRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	applications := make([]models.ApplicationPublic, 0, len(rows))
	for i := range rows {
		app := rows[i].public()
		if err := validateRow(app); err != nil {
			return nil, err
		}
		applications = append(applications, *app)
	}
	return applications, nil
}

// CreateApplication вставляет заявку и три её дочерние записи в одной
// транзакции и там же собирает публичный агрегат. Любая ошибка откатывает всё.
func (s *Storage) CreateApplication(ctx context.Context, dto *models.ApplicationDTO) (*models.ApplicationPublic, error) {
	status := dto.Status
	if status == "" {
		status = models.StatusDraft
	}

	var result *models.ApplicationPublic
	err := s.db.InTransaction(ctx, func(tx *sqlx.Tx) error {
		var appID int
		err := tx.QueryRowContext(ctx, `
            INSERT INTO applications (user_id, organization_id, phone, comment, status)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id`,
			dto.UserID, dto.OrganizationID, dto.Phone, dto.Comment, status).Scan(&appID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO loads (application_id, type_id, weight, length, height, width, volume, co_loading)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			appID, dto.Load.TypeID, dto.Load.Weight, dto.Load.Length, dto.Load.Height,
			dto.Load.Width, dto.Load.Volume, dto.Load.CoLoading); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO payments (application_id, currency_id, amount, prepayment, method_id, condition_id)
            VALUES ($1, $2, $3, $4, $5, $6)`,
			appID, dto.Payment.CurrencyID, dto.Payment.Amount, dto.Payment.Prepayment,
			dto.Payment.MethodID, dto.Payment.ConditionID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
            INSERT INTO transports (application_id, type_id, count)
            VALUES ($1, $2, $3)`,
			appID, dto.Transport.TypeID, dto.Transport.Count); err != nil {
			return err
		}

		composed, err := composeApplication(ctx, tx, appID)
		if err != nil {
			return err
		}
		if composed == nil {
			return fmt.Errorf("application %d vanished inside transaction", appID)
		}
		result = composed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteApplicationByID удаляет заявку; груз, оплата и транспорт уходят
// каскадом на уровне схемы. Возвращает, была ли удалена строка.
func (s *Storage) DeleteApplicationByID(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
