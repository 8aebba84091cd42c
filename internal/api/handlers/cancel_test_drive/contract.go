package cancel_test_drive

import (
	"context"

	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives/models"
)

type TestDriveService interface {
	Cancel(ctx context.Context, id int64) (*models.TestDriveResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
