package model

// Doctor belongs to the clinic roster; the booking core reads it, never
// writes it.
type Doctor struct {
	Base
	Name      string `db:"name" json:"name"`
	Specialty string `db:"specialty" json:"specialty"`
	Email     string `db:"email" json:"email"`
	Active    bool   `db:"active" json:"active"`
}

// DoctorOnDuty is a roster entry annotated with the duty window for the
// queried date.
type DoctorOnDuty struct {
	Doctor Doctor     `json:"doctor"`
	Window DutyWindow `json:"window"`
}
