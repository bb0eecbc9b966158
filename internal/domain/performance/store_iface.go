package performance

import "context"

type StoreAPI interface {
	CreateRecord(ctx context.Context, rec Record) error
	GetRecord(ctx context.Context, recordID string) (Record, error)
	ListRecords(ctx context.Context) ([]Record, error)
	ListRecordsByEmployee(ctx context.Context, employeeID string) ([]Record, error)
	UpdateRecord(ctx context.Context, rec Record) error
	DeleteRecord(ctx context.Context, recordID string) error
	DepartmentAggregate(ctx context.Context, department string) (DepartmentSummary, error)
}
