package service

import (
	"context"
	"errors"
	"fmt"
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/repository"
	"focuscoach/coaching-app/internal/storage"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUploadURLError        = errors.New("failed to generate upload URL")
	ErrDownloadURLError      = errors.New("failed to generate download URL")
	ErrUploadNotFound        = errors.New("uploaded file not found in storage")
	ErrInvalidObjectKey      = errors.New("object key does not belong to this report")
	ErrUnsupportedAttachment = errors.New("only image attachments are supported")
	ErrAttachmentTooLarge    = errors.New("attachment exceeds the size limit")
	ErrAttachmentExists      = errors.New("attachment already confirmed")
)

// MaxAttachmentSize is the largest image accepted on a weekly report.
const MaxAttachmentSize = 10 << 20

// UploadURLResponse is returned when requesting a presigned upload URL.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// AttachmentView is an attachment with a short-lived download link.
type AttachmentView struct {
	domain.Attachment
	DownloadURL string `json:"downloadUrl"`
}

// SubmitWeeklyReport files the report for the student's current program week and
// emails their coach. The week is derived from the program window, never taken from input.
func (s *studentService) SubmitWeeklyReport(ctx context.Context, studentID primitive.ObjectID, input WeeklyReportInput) (*domain.WeeklyReport, error) {
	m := input.Metrics
	if m.NewLeads < 0 || m.Conversations < 0 || m.ShootsBooked < 0 || m.RevenueCents < 0 {
		return nil, fmt.Errorf("%w: metrics cannot be negative", ErrReportValidation)
	}

	student, err := s.getStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	program := programStatus(student, s.now(), s.location)
	if program == nil {
		return nil, ErrNoProgramWindow
	}
	if program.Week.IsBeforeWeek1 {
		return nil, ErrBeforeWeek1
	}

	week := program.Week.WeekNumber
	if _, err := s.reportRepo.GetByStudentAndWeek(ctx, studentID, week); err == nil {
		return nil, ErrReportExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	report := &domain.WeeklyReport{
		StudentID:  studentID,
		CoachID:    student.CoachID,
		WeekNumber: week,
		WeekStart:  *program.WeekStart,
		WeekEnd:    *program.WeekEnd,
		Metrics:    m,
		Wins:       strings.TrimSpace(input.Wins),
		Challenges: strings.TrimSpace(input.Challenges),
	}
	id, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateReport) {
			return nil, ErrReportExists
		}
		return nil, err
	}
	report.ID = id
	log.Printf("INFO: Student %s submitted week %d report %s", studentID.Hex(), week, id.Hex())

	s.notifyCoach(ctx, student, report)
	return report, nil
}

// notifyCoach is best effort; the report is already stored.
func (s *studentService) notifyCoach(ctx context.Context, student *domain.User, report *domain.WeeklyReport) {
	if student.CoachID == nil || s.notifier == nil {
		return
	}
	coach, err := s.userRepo.GetByID(ctx, *student.CoachID)
	if err != nil {
		log.Printf("WARN: Could not load coach %s for report notification: %v", student.CoachID.Hex(), err)
		return
	}
	if err := s.notifier.WeeklyReportSubmitted(ctx, coach, student, report); err != nil {
		log.Printf("WARN: Coach notification for report %s failed: %v", report.ID.Hex(), err)
	}
}

func (s *studentService) GetMyReports(ctx context.Context, studentID primitive.ObjectID) ([]domain.WeeklyReport, error) {
	return s.reportRepo.GetByStudentID(ctx, studentID)
}

func (s *studentService) getOwnReport(ctx context.Context, studentID, reportID primitive.ObjectID) (*domain.WeeklyReport, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if report.StudentID != studentID {
		return nil, ErrReportAccessDenied
	}
	return report, nil
}

// attachmentPrefix is the key prefix every object of a report lives under.
func attachmentPrefix(studentID, reportID primitive.ObjectID) string {
	return path.Join("reports", studentID.Hex(), reportID.Hex()) + "/"
}

// RequestAttachmentUploadURL returns a presigned PUT URL for an image on one of the student's reports.
func (s *studentService) RequestAttachmentUploadURL(ctx context.Context, studentID, reportID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedAttachment
	}
	if _, err := s.getOwnReport(ctx, studentID, reportID); err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(contentType, "image/")
	if i := strings.IndexAny(ext, "+;"); i > 0 {
		ext = ext[:i] // svg+xml -> svg
	}
	objectKey := attachmentPrefix(studentID, reportID) + fmt.Sprintf("%s.%s", uuid.NewString(), ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		log.Printf("ERROR: Presigning upload for report %s: %v", reportID.Hex(), err)
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmAttachment records an uploaded object against the report. It is called after
// the client finished the PUT; the stored size is read back from storage.
func (s *studentService) ConfirmAttachment(ctx context.Context, studentID, reportID primitive.ObjectID, objectKey, fileName, contentType string) (*domain.Attachment, error) {
	if _, err := s.getOwnReport(ctx, studentID, reportID); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(objectKey, attachmentPrefix(studentID, reportID)) {
		return nil, ErrInvalidObjectKey
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedAttachment
	}

	size, err := s.fileStorage.ObjectSize(ctx, objectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	if size > MaxAttachmentSize {
		if err := s.fileStorage.DeleteObject(ctx, objectKey); err != nil {
			log.Printf("WARN: Could not remove oversized upload %s: %v", objectKey, err)
		}
		return nil, ErrAttachmentTooLarge
	}

	attachment := &domain.Attachment{
		ReportID:    reportID,
		StudentID:   studentID,
		S3ObjectKey: objectKey,
		FileName:    path.Base(fileName),
		ContentType: contentType,
		Size:        size,
	}
	id, err := s.attachmentRepo.Create(ctx, attachment)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAttachment) {
			return nil, ErrAttachmentExists
		}
		return nil, err
	}
	attachment.ID = id

	if err := s.reportRepo.AddAttachmentID(ctx, reportID, id); err != nil {
		// The attachment record still lists under the report through GetByReportID.
		log.Printf("WARN: Attachment %s saved but not linked to report %s: %v", id.Hex(), reportID.Hex(), err)
	}
	return attachment, nil
}

// GetAttachments lists a report's attachments with presigned download URLs.
func (s *studentService) GetAttachments(ctx context.Context, studentID, reportID primitive.ObjectID) ([]AttachmentView, error) {
	if _, err := s.getOwnReport(ctx, studentID, reportID); err != nil {
		return nil, err
	}
	attachments, err := s.attachmentRepo.GetByReportID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	views := make([]AttachmentView, 0, len(attachments))
	for _, a := range attachments {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, a.S3ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			log.Printf("ERROR: Presigning download for attachment %s: %v", a.ID.Hex(), err)
			return nil, ErrDownloadURLError
		}
		views = append(views, AttachmentView{Attachment: a, DownloadURL: url})
	}
	return views, nil
}
