package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"sales_crm/internal/domain"
	apperrors "sales_crm/pkg/errors"
	"sales_crm/pkg/logger"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, empID int64) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	ListByCompany(ctx context.Context, companyID int64) ([]*domain.Employee, error)
	UpdateLastLogin(ctx context.Context, empID int64) error
}

type employeeRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewEmployeeRepository(db *pgxpool.Pool, log logger.Logger) EmployeeRepository {
	return &employeeRepository{db: db, log: log}
}

const employeeColumns = `emp_id, company_id, name, email, password_hash, role, department, is_active, last_login_at, created_at`

func (r *employeeRepository) scanEmployee(row pgx.Row) (*domain.Employee, error) {
	emp := &domain.Employee{}
	err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.Name, &emp.Email, &emp.PasswordHash,
		&emp.Role, &emp.Department, &emp.IsActive, &emp.LastLoginAt, &emp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEmployeeNotFound
		}
		r.log.Error("Failed to scan employee", "error", err)
		return nil, err
	}
	return emp, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, empID int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE emp_id = $1`
	return r.scanEmployee(r.db.QueryRow(ctx, query, empID))
}

func (r *employeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	return r.scanEmployee(r.db.QueryRow(ctx, query, email))
}

func (r *employeeRepository) ListByCompany(ctx context.Context, companyID int64) ([]*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE company_id = $1 AND is_active = TRUE ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		r.log.Error("Failed to list employees", "error", err)
		return nil, err
	}
	defer rows.Close()

	var employees []*domain.Employee
	for rows.Next() {
		emp := &domain.Employee{}
		err := rows.Scan(
			&emp.ID, &emp.CompanyID, &emp.Name, &emp.Email, &emp.PasswordHash,
			&emp.Role, &emp.Department, &emp.IsActive, &emp.LastLoginAt, &emp.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan employee", "error", err)
			return nil, err
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

func (r *employeeRepository) UpdateLastLogin(ctx context.Context, empID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE employees SET last_login_at = $2 WHERE emp_id = $1`, empID, time.Now())
	if err != nil {
		r.log.Error("Failed to update last login", "error", err)
	}
	return err
}
