package models

// RecordStatus is the clinical review status of a diagnostic record.
type RecordStatus string

const (
	StatusPending  RecordStatus = "Pending"
	StatusReviewed RecordStatus = "Reviewed"
)

// DiagnosticRecord represents one diagnostic event: an uploaded X-ray, its
// classifier result, and the doctor's eventual sign-off. Records are
// append-only; a record is mutated exactly once, when a doctor submits the
// review, and never deleted.
type DiagnosticRecord struct {
	BaseModel
	PatientID    string       `gorm:"size:36;index;not null" json:"patientId"`
	ImagePath    string       `gorm:"size:255" json:"imagePath"`
	Prediction   string       `gorm:"size:100;not null" json:"prediction"`
	Confidence   float64      `gorm:"not null" json:"confidence"`
	Status       RecordStatus `gorm:"size:20;default:'Pending'" json:"status"`
	Notes        *string      `gorm:"type:text" json:"notes"`
	Prescription *string      `gorm:"type:text" json:"prescription"`

	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// TableName keeps the table name of the original schema.
func (DiagnosticRecord) TableName() string {
	return "patient_records"
}
