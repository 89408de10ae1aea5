package service

import (
	"context"

	"sales_crm/internal/domain"
	"sales_crm/internal/repository"
	"sales_crm/pkg/logger"
)

// EmployeeService — справочник сотрудников (для выбора адресатов @-упоминаний)
type EmployeeService interface {
	GetByID(ctx context.Context, empID int64) (*domain.Employee, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*domain.Employee, error)
}

type employeeService struct {
	employeeRepo repository.EmployeeRepository
	log          logger.Logger
}

func NewEmployeeService(employeeRepo repository.EmployeeRepository, log logger.Logger) EmployeeService {
	return &employeeService{employeeRepo: employeeRepo, log: log}
}

func (s *employeeService) GetByID(ctx context.Context, empID int64) (*domain.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, empID)
	if err != nil {
		return nil, err
	}
	emp.PasswordHash = ""
	return emp, nil
}

func (s *employeeService) ListByCompany(ctx context.Context, companyID int64) ([]*domain.Employee, error) {
	employees, err := s.employeeRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for _, emp := range employees {
		emp.PasswordHash = ""
	}
	return employees, nil
}
