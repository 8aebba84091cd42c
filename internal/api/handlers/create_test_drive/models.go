package create_test_drive

import (
	bookSlot "github.com/m04kA/SMC-TestDriveService/internal/usecase/book_slot"
	"github.com/m04kA/SMC-TestDriveService/pkg/types"
)

// CreateTestDriveRequest тело POST /test-drives
type CreateTestDriveRequest struct {
	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`
	CustomerEmail string  `json:"customerEmail"`
	Notes         *string `json:"notes,omitempty"`
	ProductID     int64   `json:"productId"`
	DealerID      int64   `json:"dealerId"`
	ScheduledDate string  `json:"scheduledDate"` // RFC 3339 с явным смещением
}

// ToUseCaseRequest конвертирует тело запроса; время без зоны отклоняется
func (r *CreateTestDriveRequest) ToUseCaseRequest() (*bookSlot.Request, error) {
	at, err := types.ParseInstant(r.ScheduledDate)
	if err != nil {
		return nil, err
	}
	return &bookSlot.Request{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		Notes:         r.Notes,
		ProductID:     r.ProductID,
		DealerID:      r.DealerID,
		ScheduledDate: at,
	}, nil
}

// CreateTestDriveResponse ответ на успешное бронирование
type CreateTestDriveResponse struct {
	Success       bool   `json:"success"`
	TestDriveID   int64  `json:"testDriveId"`
	ScheduledDate string `json:"scheduledDate"`
}

func FromUseCaseResponse(resp *bookSlot.Response) CreateTestDriveResponse {
	return CreateTestDriveResponse{
		Success:       resp.Success,
		TestDriveID:   resp.TestDriveID,
		ScheduledDate: types.FormatInstant(resp.ScheduledDate),
	}
}
