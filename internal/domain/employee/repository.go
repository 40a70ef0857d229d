package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListActive returns active employees ordered by employee number.
	ListActive(ctx context.Context) ([]Employee, error)
	// ListActiveByIDs is ListActive restricted to ids. Unknown ids are ignored.
	ListActiveByIDs(ctx context.Context, ids []string) ([]Employee, error)
}
