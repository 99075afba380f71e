package service

import (
	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/repository"
)

// Services groups every use case behind one value, wired to a single store.
type Services struct {
	Projects  ProjectService
	Status    StatusService
	Tasks     TaskService
	History   HistoryService
	Stats     StatsService
	Clients   ClientService
	Employees EmployeeService
	Invoices  InvoiceService
}

// NewServices wires the SQLite repositories over conn. Writes go through uow.
func NewServices(conn db.DBTX, uow db.UnitOfWork, opts ...Option) *Services {
	projects := repository.NewSQLiteProjectRepo(conn)
	tasks := repository.NewSQLiteTaskRepo(conn)
	invoices := repository.NewSQLiteInvoiceRepo(conn)

	clients := NewClientService(repository.NewSQLiteClientRepo(conn), projects, invoices, uow, opts...)
	employees := NewEmployeeService(repository.NewSQLiteEmployeeRepo(conn), projects, uow, opts...)

	return &Services{
		Projects:  NewProjectService(projects, uow, opts...),
		Status:    NewStatusService(projects, repository.NewSQLiteStatusHistoryRepo(conn), uow, opts...),
		Tasks:     NewTaskService(tasks, projects, repository.NewSQLiteCommentRepo(conn), uow, opts...),
		History:   NewHistoryService(repository.NewSQLiteHistoryRepo(conn), projects, tasks, opts...),
		Stats:     NewStatsService(projects, tasks, invoices, clients, employees, opts...),
		Clients:   clients,
		Employees: employees,
		Invoices:  NewInvoiceService(invoices, uow, opts...),
	}
}
