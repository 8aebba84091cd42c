package get_disabled_slots

import (
	"context"

	getDisabledSlots "github.com/m04kA/SMC-TestDriveService/internal/usecase/get_disabled_slots"
)

type GetDisabledSlotsUseCase interface {
	Execute(ctx context.Context, req *getDisabledSlots.Request) (*getDisabledSlots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
