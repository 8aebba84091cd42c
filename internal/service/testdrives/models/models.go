package models

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/pkg/ptr"
)

// Request модели

// CreatePublicBookingRequest публичное бронирование тест-драйва клиентом
type CreatePublicBookingRequest struct {
	CustomerName  string    `json:"customerName" validate:"required,max=200"`
	CustomerPhone string    `json:"customerPhone" validate:"required,phone"`
	CustomerEmail string    `json:"customerEmail" validate:"required,email,max=254"`
	Notes         *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
	ProductID     int64     `json:"productId" validate:"required,gt=0"`
	DealerID      int64     `json:"dealerId" validate:"required,gt=0"`
	ScheduledDate time.Time `json:"scheduledDate" validate:"required"`
}

// CompleteRequest завершение тест-драйва сотрудником
type CompleteRequest struct {
	IsSuccess bool    `json:"isSuccess"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// Response модели

// TestDriveResponse ответ с данными тест-драйва
type TestDriveResponse struct {
	ID                int64      `json:"id"`
	CustomerName      string     `json:"customerName"`
	CustomerPhone     string     `json:"customerPhone"`
	CustomerEmail     string     `json:"customerEmail"`
	ProductID         int64      `json:"productId"`
	DealerID          int64      `json:"dealerId"`
	ScheduledDate     time.Time  `json:"scheduledDate"`
	Notes             *string    `json:"notes,omitempty"`
	Status            string     `json:"status"`
	StaffNote         *string    `json:"staffNote,omitempty"`
	CanCreateCustomer bool       `json:"canCreateCustomer"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	CancelledAt       *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ToDomainTestDrive новый тест-драйв в статусе pending
func (r *CreatePublicBookingRequest) ToDomainTestDrive() *domain.TestDrive {
	return &domain.TestDrive{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		Notes:         OptionalText(r.Notes),
		ProductID:     r.ProductID,
		DealerID:      r.DealerID,
		ScheduledDate: r.ScheduledDate.UTC(),
		Status:        domain.TestDriveStatusPending,
	}
}

// FromDomainTestDrive конвертирует доменную модель в ответ
func FromDomainTestDrive(td *domain.TestDrive) *TestDriveResponse {
	if td == nil {
		return nil
	}
	return &TestDriveResponse{
		ID:                td.ID,
		CustomerName:      td.CustomerName,
		CustomerPhone:     td.CustomerPhone,
		CustomerEmail:     td.CustomerEmail,
		ProductID:         td.ProductID,
		DealerID:          td.DealerID,
		ScheduledDate:     td.ScheduledDate.UTC(),
		Notes:             td.Notes,
		Status:            string(td.Status),
		StaffNote:         td.StaffNote,
		CanCreateCustomer: td.CanCreateCustomer(),
		CompletedAt:       td.CompletedAt,
		CancelledAt:       td.CancelledAt,
		CreatedAt:         td.CreatedAt,
		UpdatedAt:         td.UpdatedAt,
	}
}

// OptionalText обрезает пробелы; пустой текст хранится как NULL
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return ptr.Ptr(trimmed)
}
