package testdrive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TestDriveService/pkg/psqlbuilder"
)

const tableName = "test_drives"

const (
	// pgUniqueViolation код ошибки PostgreSQL unique_violation
	pgUniqueViolation = "23505"
	// pgSerializationFailure код ошибки PostgreSQL serialization_failure
	pgSerializationFailure = "40001"
)

var columns = []string{
	"id",
	"customer_name",
	"customer_phone",
	"customer_email",
	"product_id",
	"dealer_id",
	"scheduled_date",
	"notes",
	"status",
	"staff_note",
	"completed_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий тест-драйвов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория тест-драйвов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый тест-драйв.
// Если в контексте есть транзакция, запрос выполняется в ней.
func (r *Repository) Create(ctx context.Context, td *domain.TestDrive) (*domain.TestDrive, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"customer_name",
			"customer_phone",
			"customer_email",
			"product_id",
			"dealer_id",
			"scheduled_date",
			"notes",
			"status",
		).
		Values(
			td.CustomerName,
			td.CustomerPhone,
			td.CustomerEmail,
			td.ProductID,
			td.DealerID,
			td.ScheduledDate.UTC(),
			td.Notes,
			td.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&td.ID, &createdAt, &updatedAt)
	if err != nil {
		if IsSlotConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	td.CreatedAt = createdAt.Time
	td.UpdatedAt = updatedAt.Time

	return td, nil
}

// GetByID получает тест-драйв по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TestDrive, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	td, err := scanTestDrive(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestDriveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan test drive: %v", ErrScanRow, err)
	}

	return td, nil
}

// GetScheduledInRange возвращает моменты начала активных тест-драйвов пары
// (дилер, продукт) в интервале [from, to] по возрастанию
func (r *Repository) GetScheduledInRange(ctx context.Context, dealerID, productID int64, from, to time.Time) ([]time.Time, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("scheduled_date").
		From(tableName).
		Where(squirrel.Eq{"dealer_id": dealerID}).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Where(squirrel.GtOrEq{"scheduled_date": from.UTC()}).
		Where(squirrel.LtOrEq{"scheduled_date": to.UTC()}).
		OrderBy("scheduled_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetScheduledInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetScheduledInRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]time.Time, 0)
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("%w: GetScheduledInRange - scan scheduled_date: %v", ErrScanRow, err)
		}
		result = append(result, at.UTC())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetScheduledInRange - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// HasActiveAt проверяет, занят ли слот активным тест-драйвом.
// Внутри транзакции найденная строка блокируется (FOR UPDATE).
func (r *Repository) HasActiveAt(ctx context.Context, slot domain.SlotKey) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id").
		From(tableName).
		Where(squirrel.Eq{"dealer_id": slot.DealerID}).
		Where(squirrel.Eq{"product_id": slot.ProductID}).
		Where(squirrel.Eq{"scheduled_date": slot.At}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasActiveAt - build select query: %v", ErrBuildQuery, err)
	}

	var id int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		if IsSlotConflict(err) {
			return false, ErrSlotTaken
		}
		return false, fmt.Errorf("%w: HasActiveAt - scan id: %v", ErrScanRow, err)
	}

	return true, nil
}

// TransitionParams параметры перехода статуса
type TransitionParams struct {
	ID   int64
	Next domain.TestDriveStatus
	// From статусы, из которых переход допустим; UPDATE условный
	From      []domain.TestDriveStatus
	StaffNote *string
	At        time.Time
}

// Transition переводит тест-драйв в новый статус, только если текущий статус входит в From.
// Из двух конкурентных переходов выигрывает ровно один.
func (r *Repository) Transition(ctx context.Context, p TransitionParams) (*domain.TestDrive, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	at := p.At.UTC()
	updateBuilder := psqlbuilder.Update(tableName).
		Set("status", p.Next).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"status": statusStrings(p.From)})

	switch p.Next {
	case domain.TestDriveStatusSuccessfully, domain.TestDriveStatusFailed:
		updateBuilder = updateBuilder.Set("completed_at", at)
		if p.StaffNote != nil {
			updateBuilder = updateBuilder.Set("staff_note", *p.StaffNote)
		}
	case domain.TestDriveStatusCanceled:
		updateBuilder = updateBuilder.Set("cancelled_at", at)
	}

	query, args, err := updateBuilder.
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Transition - build update query: %v", ErrBuildQuery, err)
	}

	td, err := scanTestDrive(executor.QueryRowContext(ctx, query, args...))
	if err == nil {
		return td, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: Transition - execute update: %v", ErrExecQuery, err)
	}

	// Ни одна строка не обновлена: тест-драйва нет или статус уже другой
	if _, getErr := r.GetByID(ctx, p.ID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrInvalidTransition
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTestDrive(row rowScanner) (*domain.TestDrive, error) {
	var td domain.TestDrive
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&td.ID,
		&td.CustomerName,
		&td.CustomerPhone,
		&td.CustomerEmail,
		&td.ProductID,
		&td.DealerID,
		&td.ScheduledDate,
		&td.Notes,
		&td.Status,
		&td.StaffNote,
		&td.CompletedAt,
		&td.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if !td.Status.IsValid() {
		return nil, fmt.Errorf("unknown status %q", td.Status)
	}

	td.ScheduledDate = td.ScheduledDate.UTC()
	td.CreatedAt = createdAt.Time
	td.UpdatedAt = updatedAt.Time

	return &td, nil
}

func statusStrings(statuses []domain.TestDriveStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// IsSlotConflict сообщает, что запись проиграла гонку за слот:
// нарушение уникального индекса или конфликт сериализации.
// Ошибка commit тоже проверяется, поэтому драйверная ошибка должна оставаться в цепочке.
func IsSlotConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgUniqueViolation || pqErr.Code == pgSerializationFailure
}
