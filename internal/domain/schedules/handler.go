package schedules

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medication-reminders/internal/domain/prescriptions"
	"medication-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, prescriptionsSvc *prescriptions.Service) {
	// Plan de tomas de una receta (una entrada por medicamento).
	r.Put("/prescriptions/{prescriptionID}/schedules", saveSchedulesHandler(svc, prescriptionsSvc))

	// Mis schedules (activos e inactivos)
	r.Get("/me/schedules", listMySchedulesHandler(svc))

	r.Post("/schedules/{scheduleID}/deactivate", deactivateScheduleHandler(svc))
}

// saveScheduleItem es una entrada del plan de tomas.
type saveScheduleItem struct {
	MedicineName  string    `json:"medicine_name"`
	Dosage        string    `json:"dosage"`
	Frequency     Frequency `json:"frequency" enums:"once_daily,twice_daily,three_times_daily,every_6_hours,every_8_hours,every_12_hours,custom"`
	StartTime     string    `json:"start_time"` // HH:MM
	TimesPerDay   int       `json:"times_per_day"`  // solo custom
	IntervalHours int       `json:"interval_hours"` // solo custom
	IsActive      bool      `json:"is_active"`
}

type saveSchedulesRequest struct {
	Schedules []saveScheduleItem `json:"schedules"`
}

type scheduleResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	PrescriptionID string    `json:"prescription_id"`
	MedicineName   string    `json:"medicine_name"`
	Dosage         string    `json:"dosage"`
	Frequency      Frequency `json:"frequency"`
	StartTime      string    `json:"start_time"`
	TimesPerDay    int       `json:"times_per_day"`
	IntervalHours  int       `json:"interval_hours"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// saveSchedulesHandler godoc
// @Summary Guardar plan de tomas
// @Description Guarda (upsert) el plan de tomas de una receta, una entrada por medicamento. Re-guardar la misma (receta, medicamento) sobreescribe en vez de duplicar. Sin identidad resoluble devuelve 200 con lista vacía (no-op). Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags schedules
// @Accept json
// @Produce json
// @Param prescriptionID path string true "ID de la receta"
// @Param payload body saveSchedulesRequest true "Entradas del plan; start_time en HH:MM"
// @Success 200 {array} scheduleResponse
// @Failure 400 {string} string "invalid json / frecuencia o start_time inválidos"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "prescription not found"
// @Router /prescriptions/{prescriptionID}/schedules [put]
func saveSchedulesHandler(svc *Service, prescriptionsSvc *prescriptions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			// Sin identidad el guardado es un no-op con resultado vacío.
			writeJSON(w, http.StatusOK, []scheduleResponse{})
			return
		}

		prescriptionID := chi.URLParam(r, "prescriptionID")
		owner, err := prescriptionsSvc.OwnerOf(r.Context(), prescriptionID)
		if err != nil {
			http.Error(w, "prescription not found", http.StatusNotFound)
			return
		}
		if owner != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req saveSchedulesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if len(req.Schedules) == 0 {
			http.Error(w, "schedules required", http.StatusBadRequest)
			return
		}

		out := make([]scheduleResponse, 0, len(req.Schedules))
		for _, item := range req.Schedules {
			saved, err := svc.Save(r.Context(), claims.UserID, SaveInput{
				PrescriptionID: prescriptionID,
				MedicineName:   item.MedicineName,
				Dosage:         item.Dosage,
				Frequency:      item.Frequency,
				StartTime:      item.StartTime,
				TimesPerDay:    item.TimesPerDay,
				IntervalHours:  item.IntervalHours,
				IsActive:       item.IsActive,
			})
			if err != nil {
				if errors.Is(err, ErrInvalidInput) {
					http.Error(w, "invalid schedule for "+item.MedicineName, http.StatusBadRequest)
					return
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			out = append(out, toScheduleResponse(saved))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func listMySchedulesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeJSON(w, http.StatusOK, []scheduleResponse{})
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]scheduleResponse, 0, len(items))
		for _, sch := range items {
			out = append(out, toScheduleResponse(sch))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// deactivateScheduleHandler godoc
// @Summary Desactivar schedule
// @Description Apaga un schedule (is_active=false) sin borrarlo; la generación de reminders lo ignora. Idempotente.
// @Tags schedules
// @Produce json
// @Param scheduleID path string true "ID del schedule"
// @Success 200 {object} scheduleResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "schedule not found"
// @Router /schedules/{scheduleID}/deactivate [post]
func deactivateScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sch, err := svc.Deactivate(r.Context(), chi.URLParam(r, "scheduleID"), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "schedule not found", http.StatusNotFound)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toScheduleResponse(sch))
	}
}

func toScheduleResponse(s Schedule) scheduleResponse {
	return scheduleResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		PrescriptionID: s.PrescriptionID,
		MedicineName:   s.MedicineName,
		Dosage:         s.Dosage,
		Frequency:      s.Frequency,
		StartTime:      s.StartTime,
		TimesPerDay:    s.TimesPerDay,
		IntervalHours:  s.IntervalHours,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en prescriptions/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
