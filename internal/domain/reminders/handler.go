package reminders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medication-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/me/reminders", listTodayHandler(svc))
	r.Post("/me/reminders/generate", generateHandler(svc))

	r.Route("/reminders/{reminderID}", func(rr chi.Router) {
		rr.Post("/taken", markTakenHandler(svc))
		rr.Post("/missed", markMissedHandler(svc))
	})
}

// reminderResponse es un reminder de hoy con su urgencia calculada al
// momento de la lectura (status nunca se persiste).
type reminderResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	PrescriptionID   string    `json:"prescription_id"`
	PrescriptionName string    `json:"prescription_name"`
	MedicineName     string    `json:"medicine_name"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	Status           Status    `json:"status" enums:"upcoming,due,overdue,missed"`
	Frequency        string    `json:"frequency"`
	CreatedAt        time.Time `json:"created_at"`
}

// listTodayHandler godoc
// @Summary Reminders de hoy
// @Description Lista los reminders del usuario para hoy, ascendente por hora, cada uno con su urgencia (`upcoming`/`due`/`overdue`/`missed`) calculada contra "ahora". Sin identidad resoluble devuelve 200 con lista vacía.
// @Tags reminders
// @Produce json
// @Success 200 {array} reminderResponse
// @Failure 500 {string} string "internal error"
// @Router /me/reminders [get]
func listTodayHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		writeTodayList(w, r, svc, strings.TrimSpace(claims.UserID))
	}
}

// generateHandler godoc
// @Summary Generar reminders de hoy
// @Description Materializa los reminders de hoy desde los schedules activos (idempotente: nunca duplica ni muta los existentes) y devuelve la lista fresca. Sin identidad resoluble es un no-op con lista vacía.
// @Tags reminders
// @Produce json
// @Success 200 {array} reminderResponse
// @Failure 500 {string} string "generation failed"
// @Router /me/reminders/generate [post]
func generateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())
		userID := strings.TrimSpace(claims.UserID)

		if err := svc.EnsureTodayGenerated(r.Context(), userID); err != nil {
			// Best-effort: puede haber insertado una parte. Se reporta
			// igual; el cliente decide si reintenta.
			http.Error(w, "generation failed", http.StatusInternalServerError)
			return
		}

		writeTodayList(w, r, svc, userID)
	}
}

// markTakenHandler godoc
// @Summary Marcar toma como tomada
// @Description Borra el reminder (el ciclo de vida borra, no marca), corre el hook de próxima toma y devuelve la lista fresca de hoy. Mientras hay una acción en vuelo sobre el mismo reminder, otra igual devuelve 409.
// @Tags reminders
// @Produce json
// @Param reminderID path string true "ID del reminder"
// @Success 200 {array} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "reminder not found"
// @Failure 409 {string} string "action already in flight"
// @Router /reminders/{reminderID}/taken [post]
func markTakenHandler(svc *Service) http.HandlerFunc {
	return resolveHandler(svc, func(svc *Service, r *http.Request, userID, reminderID string) error {
		return svc.MarkTaken(r.Context(), userID, reminderID)
	})
}

// markMissedHandler godoc
// @Summary Marcar toma como salteada
// @Description Borra el reminder y devuelve la lista fresca de hoy (sin hook de próxima toma).
// @Tags reminders
// @Produce json
// @Param reminderID path string true "ID del reminder"
// @Success 200 {array} reminderResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "reminder not found"
// @Failure 409 {string} string "action already in flight"
// @Router /reminders/{reminderID}/missed [post]
func markMissedHandler(svc *Service) http.HandlerFunc {
	return resolveHandler(svc, func(svc *Service, r *http.Request, userID, reminderID string) error {
		return svc.MarkMissed(r.Context(), userID, reminderID)
	})
}

func resolveHandler(svc *Service, do func(svc *Service, r *http.Request, userID, reminderID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		reminderID := chi.URLParam(r, "reminderID")
		if err := do(svc, r, claims.UserID, reminderID); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "reminder not found", http.StatusNotFound)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrActionInFlight):
				http.Error(w, "action already in flight", http.StatusConflict)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		// El contrato del flujo es dejar al caller con la lista
		// consistente después de cada acción.
		writeTodayList(w, r, svc, claims.UserID)
	}
}

func writeTodayList(w http.ResponseWriter, r *http.Request, svc *Service, userID string) {
	items, err := svc.ListToday(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	now := svc.now()
	out := make([]reminderResponse, 0, len(items))
	for _, rem := range items {
		out = append(out, toReminderResponse(rem, now))
	}

	writeJSON(w, http.StatusOK, out)
}

func toReminderResponse(rem Reminder, now time.Time) reminderResponse {
	return reminderResponse{
		ID:               rem.ID,
		UserID:           rem.UserID,
		PrescriptionID:   rem.PrescriptionID,
		PrescriptionName: rem.PrescriptionName,
		MedicineName:     rem.MedicineName,
		ScheduledAt:      rem.ScheduledAt,
		Status:           Classify(now, rem.ScheduledAt),
		Frequency:        string(rem.Frequency),
		CreatedAt:        rem.CreatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en prescriptions/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
