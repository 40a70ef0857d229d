package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lrliang/hmf-ehr/internal/domain/payroll"
	"github.com/lrliang/hmf-ehr/internal/handler/http/response"
)

type PayrollHandler interface {
	// Calculation
	CalculateSalary(w http.ResponseWriter, r *http.Request)
	BatchCalculateSalary(w http.ResponseWriter, r *http.Request)

	// Salary details
	ListSalaryDetails(w http.ResponseWriter, r *http.Request)
	GetSalaryDetail(w http.ResponseWriter, r *http.Request)
	ConfirmSalaryDetail(w http.ResponseWriter, r *http.Request)
	PaySalaryDetail(w http.ResponseWriter, r *http.Request)
	CancelSalaryDetail(w http.ResponseWriter, r *http.Request)

	// Summary
	GetStatistics(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== CALCULATION ==========

func (h *payrollHandlerImpl) CalculateSalary(w http.ResponseWriter, r *http.Request) {
	var req payroll.CalculateSalaryRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CalculateSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary calculation finished", result)
}

func (h *payrollHandlerImpl) BatchCalculateSalary(w http.ResponseWriter, r *http.Request) {
	var req payroll.BatchCalculateSalaryRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.BatchCalculateSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Batch salary calculation finished", result)
}

// ========== SALARY DETAILS ==========

func (h *payrollHandlerImpl) ListSalaryDetails(w http.ResponseWriter, r *http.Request) {
	filter := payroll.SalaryDetailFilter{
		EmployeeID:  optionalQuery(r, "employee_id"),
		ReportMonth: optionalQuery(r, "report_month"),
		Status:      optionalQuery(r, "status"),
	}
	filter.Page, filter.Limit = pagination(r)

	result, err := h.payrollService.ListSalaryDetails(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, listMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *payrollHandlerImpl) GetSalaryDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary detail ID is required", nil)
		return
	}

	result, err := h.payrollService.GetSalaryDetail(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ConfirmSalaryDetail(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.payrollService.ConfirmSalaryDetail, "Salary detail confirmed")
}

func (h *payrollHandlerImpl) PaySalaryDetail(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.payrollService.PaySalaryDetail, "Salary detail marked as paid")
}

func (h *payrollHandlerImpl) CancelSalaryDetail(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.payrollService.CancelSalaryDetail, "Salary detail cancelled")
}

func (h *payrollHandlerImpl) updateStatus(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, payroll.UpdateSalaryStatusRequest) (payroll.SalaryDetailResponse, error),
	message string,
) {
	var req payroll.UpdateSalaryStatusRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.Actor = actorFrom(r)

	result, err := fn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// ========== SUMMARY ==========

// GetStatistics handles GET /payroll/statistics?report_month=YYYY-MM
func (h *payrollHandlerImpl) GetStatistics(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("report_month")
	if month == "" {
		response.BadRequest(w, "report_month is required", nil)
		return
	}

	result, err := h.payrollService.GetStatistics(r.Context(), month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
