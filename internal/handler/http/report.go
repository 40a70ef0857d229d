package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lrliang/hmf-ehr/internal/domain/report"
	"github.com/lrliang/hmf-ehr/internal/handler/http/response"
)

type ReportHandler interface {
	// Calculation triggers
	TriggerDailyCalculation(w http.ResponseWriter, r *http.Request)
	TriggerDateCalculation(w http.ResponseWriter, r *http.Request)
	TriggerMonthlyCalculation(w http.ResponseWriter, r *http.Request)

	// Daily reports
	ListDailyReports(w http.ResponseWriter, r *http.Request)
	GetDailyReport(w http.ResponseWriter, r *http.Request)

	// Monthly reports
	ListMonthlyReports(w http.ResponseWriter, r *http.Request)
	GetMonthlyReport(w http.ResponseWriter, r *http.Request)
	ConfirmMonthlyReport(w http.ResponseWriter, r *http.Request)
	BatchConfirmMonthlyReports(w http.ResponseWriter, r *http.Request)
	GetMonthlyStats(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ========== CALCULATION TRIGGERS ==========

// TriggerDailyCalculation handles POST /reports/daily/calculate
func (h *reportHandlerImpl) TriggerDailyCalculation(w http.ResponseWriter, r *http.Request) {
	var req report.TriggerDailyCalculationRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reportService.TriggerDailyCalculation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily reports calculated", result)
}

// TriggerDateCalculation handles POST /reports/daily/calculate-date
func (h *reportHandlerImpl) TriggerDateCalculation(w http.ResponseWriter, r *http.Request) {
	var req report.TriggerDateCalculationRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reportService.TriggerDateCalculation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Daily reports recalculated", result)
}

// TriggerMonthlyCalculation handles POST /reports/monthly/calculate
func (h *reportHandlerImpl) TriggerMonthlyCalculation(w http.ResponseWriter, r *http.Request) {
	var req report.TriggerMonthlyCalculationRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.reportService.TriggerMonthlyCalculation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly reports aggregated", result)
}

// ========== DAILY REPORTS ==========

func (h *reportHandlerImpl) ListDailyReports(w http.ResponseWriter, r *http.Request) {
	filter := report.DailyReportFilter{
		EmployeeID:        optionalQuery(r, "employee_id"),
		StartDate:         optionalQuery(r, "start_date"),
		EndDate:           optionalQuery(r, "end_date"),
		CalculationStatus: optionalQuery(r, "calculation_status"),
	}
	filter.Page, filter.Limit = pagination(r)

	result, err := h.reportService.ListDailyReports(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, listMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *reportHandlerImpl) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Report ID is required", nil)
		return
	}

	result, err := h.reportService.GetDailyReport(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== MONTHLY REPORTS ==========

func (h *reportHandlerImpl) ListMonthlyReports(w http.ResponseWriter, r *http.Request) {
	filter := report.MonthlyReportFilter{
		EmployeeID:         optionalQuery(r, "employee_id"),
		ReportMonth:        optionalQuery(r, "report_month"),
		ConfirmationStatus: optionalQuery(r, "confirmation_status"),
	}
	filter.Page, filter.Limit = pagination(r)

	result, err := h.reportService.ListMonthlyReports(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, listMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *reportHandlerImpl) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Report ID is required", nil)
		return
	}

	result, err := h.reportService.GetMonthlyReport(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ConfirmMonthlyReport handles POST /reports/monthly/{id}/confirm
func (h *reportHandlerImpl) ConfirmMonthlyReport(w http.ResponseWriter, r *http.Request) {
	var req report.ConfirmMonthlyReportRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ConfirmedBy = actorFrom(r)

	result, err := h.reportService.ConfirmMonthlyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Monthly report confirmed", result)
}

// BatchConfirmMonthlyReports handles POST /reports/monthly/batch-confirm
func (h *reportHandlerImpl) BatchConfirmMonthlyReports(w http.ResponseWriter, r *http.Request) {
	var req report.BatchConfirmMonthlyReportsRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ConfirmedBy = actorFrom(r)

	result, err := h.reportService.BatchConfirmMonthlyReports(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthlyStats handles GET /reports/monthly/stats?report_month=YYYY-MM
func (h *reportHandlerImpl) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("report_month")
	if month == "" {
		response.BadRequest(w, "report_month is required", nil)
		return
	}

	result, err := h.reportService.GetMonthlyStats(r.Context(), month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
