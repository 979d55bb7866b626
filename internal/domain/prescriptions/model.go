package prescriptions

import "time"

// PlaceholderName es el nombre que se muestra cuando un reminder
// referencia una receta que ya no existe (join fallido).
const PlaceholderName = "Unknown Prescription"

// Prescription representa una receta médica registrada por el usuario.
// Los medicamentos concretos y su plan de tomas viven en schedules.
type Prescription struct {
	ID     string
	UserID string

	Name       string
	DoctorName string
	Notes      string

	CreatedAt time.Time
	UpdatedAt time.Time
}
