package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "medication-reminders/internal/adapters/storage/memory"
	pg "medication-reminders/internal/adapters/storage/postgres"
	"medication-reminders/internal/domain/prescriptions"
	"medication-reminders/internal/domain/reminders"
	"medication-reminders/internal/domain/schedules"
	"medication-reminders/internal/middleware"
	"medication-reminders/internal/platform/logger"
	"medication-reminders/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // nil => modo dev (X-Debug-User-ID)

	// Si viene, usa Postgres. Si no, intenta DB_DSN y cae a in-memory.
	DB *sql.DB

	Log logger.Logger // nil => logger desde env
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		prescriptionRepo prescriptions.Repository
		scheduleRepo     schedules.Repository
		reminderRepo     reminders.Repository
	)

	// Sin DB explícita, probamos por env (dev/handoff) antes del fallback
	// in-memory.
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to memory store", map[string]any{
					"err": err.Error(),
				})
			}
		}
	}

	if db != nil {
		prescriptionRepo = pg.NewPrescriptionsRepo(db)
		scheduleRepo = pg.NewSchedulesRepo(db)
		reminderRepo = pg.NewRemindersRepo(db)
	} else {
		prescriptionRepo = mem.NewPrescriptionRepo()
		scheduleRepo = mem.NewScheduleRepo()
		reminderRepo = mem.NewReminderRepo()
	}

	// Services por módulo
	prescriptionsSvc := prescriptions.NewService(prescriptionRepo)
	schedulesSvc := schedules.NewService(scheduleRepo)
	remindersSvc := reminders.NewService(reminderRepo, schedulesSvc, prescriptionsSvc, log)

	// Rutas por módulo
	prescriptions.RegisterRoutes(r, prescriptionsSvc)
	schedules.RegisterRoutes(r, schedulesSvc, prescriptionsSvc)
	reminders.RegisterRoutes(r, remindersSvc)

	return r
}
