package get_disabled_slots

import (
	getDisabledSlots "github.com/m04kA/SMC-TestDriveService/internal/usecase/get_disabled_slots"
	"github.com/m04kA/SMC-TestDriveService/pkg/types"
)

// DisabledSlotsResponse недоступные для бронирования моменты в UTC
type DisabledSlotsResponse struct {
	DealerID  int64    `json:"dealerId"`
	ProductID int64    `json:"productId"`
	Slots     []string `json:"slots"`
}

func FromUseCaseResponse(dealerID, productID int64, resp *getDisabledSlots.Response) DisabledSlotsResponse {
	slots := make([]string, 0, len(resp.Slots))
	for _, at := range resp.Slots {
		slots = append(slots, types.FormatInstant(at))
	}
	return DisabledSlotsResponse{
		DealerID:  dealerID,
		ProductID: productID,
		Slots:     slots,
	}
}
