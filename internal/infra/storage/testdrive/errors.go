package testdrive

import "errors"

var (
	// ErrTestDriveNotFound возвращается, когда тест-драйв не найден
	ErrTestDriveNotFound = errors.New("testdrive.repository: test drive not found")

	// ErrInvalidTransition возвращается, когда текущий статус не допускает перехода
	ErrInvalidTransition = errors.New("testdrive.repository: invalid status transition")

	// ErrSlotTaken возвращается при нарушении уникальности активного тест-драйва на слот
	ErrSlotTaken = errors.New("testdrive.repository: slot already taken")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("testdrive.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("testdrive.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("testdrive.repository: failed to scan row")
)
