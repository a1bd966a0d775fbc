package handlers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pneumoscan-server/internal/classifier"
	"pneumoscan-server/internal/config"
	"pneumoscan-server/internal/middleware"
	"pneumoscan-server/internal/models"
	"pneumoscan-server/internal/store"
	"pneumoscan-server/internal/utils"
)

// maxUploadBytes caps uploaded X-ray images at 10 MiB.
const maxUploadBytes = 10 << 20

// RecordHandler handles diagnostic record requests: upload + classification,
// listing, and the doctor review workflow.
type RecordHandler struct {
	Records    *store.RecordStore
	Classifier classifier.Classifier
	Cfg        *config.Config
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(db *gorm.DB, clf classifier.Classifier, cfg *config.Config) *RecordHandler {
	return &RecordHandler{Records: store.NewRecordStore(db), Classifier: clf, Cfg: cfg}
}

// ClassifyResponse is the payload returned after a successful upload.
type ClassifyResponse struct {
	Record     *models.DiagnosticRecord `json:"record"`
	Prediction string                   `json:"prediction"`
	Confidence float64                  `json:"confidence"`
}

// UploadAndClassify accepts a chest X-ray image, runs it through the
// classifier, and persists a Pending diagnostic record for the uploading
// patient. A classification failure creates no record.
func (h *RecordHandler) UploadAndClassify(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequest(c, "Error retrieving image from form: "+err.Error())
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		utils.BadRequest(c, "Image exceeds the maximum upload size")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		utils.BadRequest(c, "Unsupported image type; upload a JPG or PNG X-ray")
		return
	}

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		utils.InternalServerError(c, "Error reading image content: "+err.Error())
		return
	}

	result, err := h.Classifier.Classify(c.Request.Context(), imageBytes)
	if err != nil {
		// No record is created when classification fails.
		utils.UnprocessableEntity(c, err.Error())
		return
	}

	imageRef, err := h.saveImage(imageBytes, ext)
	if err != nil {
		utils.InternalServerError(c, "Failed to store uploaded image: "+err.Error())
		return
	}

	record, err := h.Records.CreateRecord(patientID, result.Label, result.Confidence, imageRef)
	if err != nil {
		if errors.Is(err, store.ErrPatientNotFound) {
			utils.NotFound(c, "Patient account not found")
			return
		}
		utils.InternalServerError(c, "Failed to save diagnostic record: "+err.Error())
		return
	}

	utils.Created(c, "Analysis complete", ClassifyResponse{
		Record:     record,
		Prediction: result.Label,
		Confidence: result.Confidence,
	})
}

// ListRecords returns diagnostic records. Patients see only their own
// timeline; doctors see every patient, optionally filtered by status for the
// pending-cases and history views.
func (h *RecordHandler) ListRecords(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	patientFilter := ""
	switch role {
	case models.RolePatient:
		patientFilter = userID
	case models.RoleDoctor:
		patientFilter = c.Query("patientId")
	default:
		utils.Forbidden(c, "You are not authorized to view diagnostic records")
		return
	}

	status := models.RecordStatus(c.Query("status"))
	if status != "" && status != models.StatusPending && status != models.StatusReviewed {
		utils.BadRequest(c, "Invalid status filter; expected Pending or Reviewed")
		return
	}

	records, err := h.Records.ListRecords(patientFilter, status)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch diagnostic records: "+err.Error())
		return
	}

	utils.Success(c, "Diagnostic records fetched successfully", records)
}

// GetRecord fetches a single diagnostic record. Accessible by the owning
// patient or any doctor.
func (h *RecordHandler) GetRecord(c *gin.Context) {
	recordID := c.Param("id")

	record, err := h.Records.GetRecord(recordID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			utils.NotFound(c, "Diagnostic record not found")
		} else {
			utils.InternalServerError(c, "Failed to fetch diagnostic record: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	isDoctor := role == models.RoleDoctor
	isOwner := role == models.RolePatient && userID == record.PatientID
	if !isDoctor && !isOwner {
		utils.Forbidden(c, "You are not authorized to view this diagnostic record")
		return
	}

	utils.Success(c, "Diagnostic record fetched successfully", record)
}

// SubmitReviewRequest represents the clinical input a doctor submits.
type SubmitReviewRequest struct {
	Notes        string `json:"notes"`
	Prescription string `json:"prescription"`
}

// SubmitReview moves a Pending record to Reviewed, setting the doctor's
// notes and prescription in the same update. An already-reviewed record is
// a conflict, not a silent overwrite.
func (h *RecordHandler) SubmitReview(c *gin.Context) {
	recordID := c.Param("id")

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Notes) == "" && strings.TrimSpace(req.Prescription) == "" {
		utils.BadRequest(c, "A review requires notes and/or a prescription")
		return
	}

	record, err := h.Records.SubmitReview(recordID, req.Prescription, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			utils.NotFound(c, "Diagnostic record not found")
		case errors.Is(err, store.ErrAlreadyReviewed):
			utils.Conflict(c, "This record has already been reviewed")
		default:
			utils.InternalServerError(c, "Failed to submit review: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient assessment submitted", record)
}

func (h *RecordHandler) saveImage(imageBytes []byte, ext string) (string, error) {
	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(h.Cfg.UploadDir, name), imageBytes, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
