package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Статусы заявки
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusArchived  = "archived"
)

// Статусы ставки
const (
	BidStatusPending  = "pending"
	BidStatusRejected = "rejected"
	BidStatusAccepted = "accepted"
)

var phoneRegexp = regexp.MustCompile(`^\+?\d{10,15}$`)

// NewValidator возвращает валидатор с тегом phone для номеров вида +79998887766.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegexp.MatchString(fl.Field().String())
	})
	return v
}

// Сущность Пользователя (внешняя, только для чтения)
type User struct {
	ID        int    `db:"id" json:"id,omitempty"`
	FirstName string `db:"first_name" json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `db:"last_name" json:"last_name" validate:"required,min=1,max=50"`
}

// Сущность Организации (внешняя, только для чтения)
type Organization struct {
	ID   int    `db:"id" json:"id,omitempty"`
	UIN  string `db:"uin" json:"uin" validate:"max=20"`
	Name string `db:"name" json:"name" validate:"required,min=1,max=50"`
}

// Запись справочника (типы грузов, типы транспорта, способы и условия оплаты)
type CatalogItem struct {
	ID   int    `db:"id" json:"id" validate:"required,gt=0"`
	Name string `db:"name" json:"name" validate:"required"`
}

// DTO груза при создании заявки
type LoadDTO struct {
	TypeID    int     `json:"type_id" validate:"required,gt=0"`
	Weight    float64 `json:"weight" validate:"required,gt=0"`
	Length    float64 `json:"length" validate:"required,gt=0"`
	Height    float64 `json:"height" validate:"required,gt=0"`
	Width     float64 `json:"width" validate:"required,gt=0"`
	Volume    float64 `json:"volume" validate:"required,gt=0"`
	CoLoading string  `json:"co_loading" validate:"required,oneof=no_load co_load take_load"`
}

// DTO оплаты при создании заявки
type PaymentDTO struct {
	CurrencyID  int     `json:"currency_id" validate:"required,gt=0"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Prepayment  float64 `json:"prepayment" validate:"gte=0,lte=1"`
	MethodID    int     `json:"method_id" validate:"required,gt=0"`
	ConditionID int     `json:"condition_id" validate:"required,gt=0"`
}

// DTO транспорта при создании заявки
type TransportDTO struct {
	TypeID int `json:"type_id" validate:"required,gt=0"`
	Count  int `json:"count" validate:"required,gt=0"`
}

// DTO заявки: общие поля плюс три обязательные вложенные записи
type ApplicationDTO struct {
	UserID         int          `json:"user_id" validate:"required,gt=0"`
	OrganizationID *int         `json:"organization_id" validate:"omitempty,gt=0"`
	Phone          string       `json:"phone" validate:"required,phone"`
	Comment        *string      `json:"comment"`
	Status         string       `json:"status" validate:"omitempty,oneof=draft active cancelled archived"`
	Load           LoadDTO      `json:"load"`
	Payment        PaymentDTO   `json:"payment"`
	Transport      TransportDTO `json:"transport"`
}

// DTO ставки перевозчика
type BidDTO struct {
	ApplicationID  int  `json:"application_id" validate:"required,gt=0"`
	UserID         int  `json:"user_id" validate:"required,gt=0"`
	OrganizationID *int `json:"organization_id" validate:"omitempty,gt=0"`
}

// Фильтры списка заявок
type ApplicationFilters struct {
	Status         string `json:"status" validate:"omitempty,oneof=draft active cancelled archived"`
	UserID         int    `json:"user_id" validate:"omitempty,gt=0"`
	OrganizationID int    `json:"organization_id" validate:"omitempty,gt=0"`
	Page           int    `json:"page" validate:"omitempty,gt=0"`
	Limit          int    `json:"limit" validate:"omitempty,gt=0,lte=100"`
}

// Публичная проекция груза: type_id заменён на вложенный справочник
type LoadPublic struct {
	ID        int         `json:"id" validate:"required,gt=0"`
	Weight    float64     `json:"weight" validate:"required,gt=0"`
	Length    float64     `json:"length" validate:"required,gt=0"`
	Height    float64     `json:"height" validate:"required,gt=0"`
	Width     float64     `json:"width" validate:"required,gt=0"`
	Volume    float64     `json:"volume" validate:"required,gt=0"`
	CoLoading string      `json:"co_loading" validate:"required,oneof=no_load co_load take_load"`
	Type      CatalogItem `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Публичная проекция оплаты: method_id и condition_id заменены на справочники
type PaymentPublic struct {
	ID         int         `json:"id" validate:"required,gt=0"`
	CurrencyID int         `json:"currency_id" validate:"required,gt=0"`
	Amount     float64     `json:"amount" validate:"gte=0"`
	Prepayment float64     `json:"prepayment" validate:"gte=0,lte=1"`
	Method     CatalogItem `json:"method"`
	Condition  CatalogItem `json:"condition"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Публичная проекция транспорта
type TransportPublic struct {
	ID        int         `json:"id" validate:"required,gt=0"`
	Count     int         `json:"count" validate:"required,gt=0"`
	Type      CatalogItem `json:"type"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Публичная проекция заявки. Сырые внешние ключи (user_id, organization_id,
// type_id и т.п.) наружу не отдаются, вместо них вложенные объекты.
type ApplicationPublic struct {
	ID           int             `json:"id" validate:"required,gt=0"`
	Phone        string          `json:"phone" validate:"required,phone"`
	Comment      *string         `json:"comment"`
	Status       string          `json:"status" validate:"required,oneof=draft active cancelled archived"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	UpdatedBy    *int            `json:"updated_by"`
	User         User            `json:"user"`
	Organization *Organization   `json:"organization"`
	Load         LoadPublic      `json:"load"`
	Payment      PaymentPublic   `json:"payment"`
	Transport    TransportPublic `json:"transport"`
}

// Автор ставки: пользователь и, опционально, его организация
type BidFrom struct {
	User         User          `json:"user"`
	Organization *Organization `json:"organization"`
}

// Публичная проекция ставки
type BidPublic struct {
	ID            int       `json:"id" validate:"required,gt=0"`
	ApplicationID int       `json:"application_id" validate:"required,gt=0"`
	Status        string    `json:"status" validate:"required,oneof=pending rejected accepted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	From          BidFrom   `json:"from"`
	UpdatedBy     *User     `json:"updated_by"`
}
