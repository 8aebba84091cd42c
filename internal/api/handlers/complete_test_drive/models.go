package complete_test_drive

import "github.com/m04kA/SMC-TestDriveService/internal/service/testdrives/models"

// CompleteTestDriveRequest итог тест-драйва от сотрудника
type CompleteTestDriveRequest struct {
	IsSuccess *bool   `json:"isSuccess"`
	Note      *string `json:"note,omitempty"`
}

func (r *CompleteTestDriveRequest) ToServiceRequest() *models.CompleteRequest {
	return &models.CompleteRequest{
		IsSuccess: *r.IsSuccess,
		Note:      r.Note,
	}
}
