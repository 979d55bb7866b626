package prescriptions

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"medication-reminders/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/prescriptions", func(pr chi.Router) {
		pr.Post("/", createPrescriptionHandler(svc))
		pr.Get("/", listPrescriptionsHandler(svc))
		pr.Get("/{prescriptionID}", getPrescriptionHandler(svc))
	})
}

type createPrescriptionRequest struct {
	Name       string `json:"name"`
	DoctorName string `json:"doctor_name"`
	Notes      string `json:"notes"`
}

type prescriptionResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	DoctorName string    `json:"doctor_name"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// createPrescriptionHandler godoc
// @Summary Registrar receta
// @Description Registra una receta del usuario autenticado. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param payload body createPrescriptionRequest true "Datos de la receta"
// @Success 201 {object} prescriptionResponse
// @Failure 400 {string} string "invalid json / name requerido"
// @Failure 401 {string} string "unauthorized"
// @Router /prescriptions [post]
func createPrescriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:       req.Name,
			DoctorName: req.DoctorName,
			Notes:      req.Notes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPrescriptionResponse(p))
	}
}

func listPrescriptionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]prescriptionResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPrescriptionResponse(p))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getPrescriptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := chi.URLParam(r, "prescriptionID")
		p, err := svc.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "prescription not found", http.StatusNotFound)
			return
		}

		// Solo el dueño ve su receta.
		if p.UserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toPrescriptionResponse(p))
	}
}

func toPrescriptionResponse(p Prescription) prescriptionResponse {
	return prescriptionResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Name:       p.Name,
		DoctorName: p.DoctorName,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// (prescriptions/schedules/reminders) para no crear helpers compartidos
// demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
