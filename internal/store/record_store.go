package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pneumoscan-server/internal/models"
)

// RecordStore owns the diagnostic record table and the review state machine.
// A record starts Pending at creation and moves to Reviewed exactly once; the
// transition is guarded in SQL so concurrent reviewers cannot both win.
type RecordStore struct {
	DB *gorm.DB
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{DB: db}
}

// RecordWithPatient is a diagnostic record joined with the patient's display
// name and username, the shape both dashboards render.
type RecordWithPatient struct {
	ID              string              `json:"id"`
	PatientID       string              `json:"patientId"`
	PatientName     string              `json:"patientName"`
	PatientUsername string              `json:"patientUsername"`
	ImagePath       string              `json:"imagePath"`
	Prediction      string              `json:"prediction"`
	Confidence      float64             `json:"confidence"`
	Status          models.RecordStatus `json:"status"`
	Notes           *string             `json:"notes"`
	Prescription    *string             `json:"prescription"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// CreateRecord inserts a new record with status Pending and no clinical
// fields. The patient must exist with the patient role; orphaned inserts are
// rejected rather than trusted.
func (s *RecordStore) CreateRecord(patientID, prediction string, confidence float64, imageRef string) (*models.DiagnosticRecord, error) {
	if confidence < 0 || confidence > 100 {
		return nil, fmt.Errorf("confidence %.2f out of range [0,100]", confidence)
	}

	var patient models.User
	if err := s.DB.Where("id = ? AND role = ?", patientID, models.RolePatient).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, storageErr("create record: verify patient", err)
	}

	record := models.DiagnosticRecord{
		PatientID:  patientID,
		ImagePath:  imageRef,
		Prediction: prediction,
		Confidence: confidence,
		Status:     models.StatusPending,
	}

	if err := s.DB.Create(&record).Error; err != nil {
		return nil, storageErr("create record", err)
	}

	return &record, nil
}

// SubmitReview sets prescription, notes and status=Reviewed in a single
// guarded update. The WHERE clause doubles as a compare-and-swap on status:
// only a Pending record transitions, so the losing writer of a concurrent
// double submission gets ErrAlreadyReviewed instead of silently overwriting.
func (s *RecordStore) SubmitReview(recordID, prescription, notes string) (*models.DiagnosticRecord, error) {
	result := s.DB.Model(&models.DiagnosticRecord{}).
		Where("id = ? AND status = ?", recordID, models.StatusPending).
		Updates(map[string]interface{}{
			"prescription": prescription,
			"notes":        notes,
			"status":       models.StatusReviewed,
		})
	if result.Error != nil {
		return nil, storageErr("submit review", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the record does not exist or it was already reviewed.
		var existing models.DiagnosticRecord
		if err := s.DB.First(&existing, "id = ?", recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRecordNotFound
			}
			return nil, storageErr("submit review: lookup", err)
		}
		return nil, ErrAlreadyReviewed
	}

	var record models.DiagnosticRecord
	if err := s.DB.First(&record, "id = ?", recordID).Error; err != nil {
		return nil, storageErr("submit review: reload", err)
	}
	return &record, nil
}

// ListRecords returns records joined with patient identity, most recent
// first. An empty patientID means all patients; an empty status means both
// Pending and Reviewed.
func (s *RecordStore) ListRecords(patientID string, status models.RecordStatus) ([]RecordWithPatient, error) {
	query := s.DB.Table("patient_records").
		Select("patient_records.id, patient_records.patient_id, users.name AS patient_name, users.username AS patient_username, " +
			"patient_records.image_path, patient_records.prediction, patient_records.confidence, patient_records.status, " +
			"patient_records.notes, patient_records.prescription, patient_records.created_at").
		Joins("JOIN users ON users.id = patient_records.patient_id").
		Order("patient_records.created_at DESC")

	if patientID != "" {
		query = query.Where("patient_records.patient_id = ?", patientID)
	}
	if status != "" {
		query = query.Where("patient_records.status = ?", status)
	}

	var records []RecordWithPatient
	if err := query.Scan(&records).Error; err != nil {
		return nil, storageErr("list records", err)
	}
	return records, nil
}

// GetRecord fetches a single record with its patient identity.
func (s *RecordStore) GetRecord(recordID string) (*RecordWithPatient, error) {
	var record RecordWithPatient
	result := s.DB.Table("patient_records").
		Select("patient_records.id, patient_records.patient_id, users.name AS patient_name, users.username AS patient_username, "+
			"patient_records.image_path, patient_records.prediction, patient_records.confidence, patient_records.status, "+
			"patient_records.notes, patient_records.prescription, patient_records.created_at").
		Joins("JOIN users ON users.id = patient_records.patient_id").
		Where("patient_records.id = ?", recordID).
		Scan(&record)
	if result.Error != nil {
		return nil, storageErr("get record", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return &record, nil
}
