package models

// StageState tracks the lifecycle of a stage or group.
type StageState string

const (
	StageStatePlanned  StageState = "planned"
	StageStateReady    StageState = "ready"
	StageStateRunning  StageState = "running"
	StageStateFinished StageState = "finished"
)

// Stage is one phase of a discipline (e.g. "Qualification", "Finals").
type Stage struct {
	ID           string     `json:"id" db:"id"`
	DisciplineID string     `json:"discipline_id" db:"discipline_id"`
	Name         *string    `json:"name,omitempty" db:"name"`
	State        StageState `json:"state" db:"state"`

	Groups []Group `json:"groups,omitempty" db:"-"`
}
