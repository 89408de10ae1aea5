package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"sales_crm/internal/middleware"
	"sales_crm/internal/service"
	"sales_crm/pkg/logger"
)

type EmployeeHandler struct {
	employeeService service.EmployeeService
	log             logger.Logger
}

func NewEmployeeHandler(employeeService service.EmployeeService, log logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		log:             log,
	}
}

// List возвращает сотрудников компании (для выбора @-упоминаний)
func (h *EmployeeHandler) List(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	employees, err := h.employeeService.ListByCompany(c.Request.Context(), identity.CompanyID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, employees)
}

func (h *EmployeeHandler) GetMe(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	emp, err := h.employeeService.GetByID(c.Request.Context(), identity.EmpID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, emp)
}
