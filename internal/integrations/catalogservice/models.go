package catalogservice

// Product продукт дилера из каталога
type Product struct {
	ID                 int64  `json:"id"`
	DealerID           int64  `json:"dealer_id"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	TestDriveAvailable bool   `json:"test_drive_available"`
}
