package domain

import (
	"time"
)

type Employee struct {
	ID           int64      `json:"emp_id"`
	CompanyID    int64      `json:"company_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Department   *string    `json:"department,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleSales   = "SALES"
)

// Identity — разрешенная личность сотрудника из токена
type Identity struct {
	EmpID     int64
	CompanyID int64
	Role      string
}
