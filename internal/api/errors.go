package api

import (
	"errors"
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/service"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorStatuses maps service errors onto HTTP codes. The first match wins.
var errorStatuses = []struct {
	err  error
	code int
}{
	// 400
	{service.ErrInvalidLeadQuery, http.StatusBadRequest},
	{service.ErrInvalidStatus, http.StatusBadRequest},
	{service.ErrInvalidTagType, http.StatusBadRequest},
	{service.ErrLeadValidation, http.StatusBadRequest},
	{service.ErrGoalValidation, http.StatusBadRequest},
	{service.ErrReportValidation, http.StatusBadRequest},
	{service.ErrUnsupportedAttachment, http.StatusBadRequest},
	{service.ErrInvalidObjectKey, http.StatusBadRequest},
	{service.ErrInvalidAccessWindow, http.StatusBadRequest},
	{service.ErrPricingPlanInvalid, http.StatusBadRequest},
	{domain.ErrUnknownRole, http.StatusBadRequest},

	// 401 / 403
	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrRoleNotAllowed, http.StatusForbidden},
	{service.ErrLeadAccessDenied, http.StatusForbidden},
	{service.ErrGoalAccessDenied, http.StatusForbidden},
	{service.ErrReportAccessDenied, http.StatusForbidden},
	{service.ErrStudentNotManaged, http.StatusForbidden},
	{service.ErrNotStudent, http.StatusForbidden},
	{service.ErrCannotChangeOwnRole, http.StatusForbidden},

	// 404
	{service.ErrLeadNotFound, http.StatusNotFound},
	{service.ErrGoalNotFound, http.StatusNotFound},
	{service.ErrReportNotFound, http.StatusNotFound},
	{service.ErrStudentNotFound, http.StatusNotFound},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrPricingPlanNotFound, http.StatusNotFound},
	{service.ErrUploadNotFound, http.StatusNotFound},

	// 409 / 413 / 422
	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrStudentAlreadyAssigned, http.StatusConflict},
	{service.ErrReportExists, http.StatusConflict},
	{service.ErrAttachmentExists, http.StatusConflict},
	{service.ErrAttachmentTooLarge, http.StatusRequestEntityTooLarge},
	{service.ErrNoProgramWindow, http.StatusUnprocessableEntity},
	{service.ErrBeforeWeek1, http.StatusUnprocessableEntity},
}

// statusForError returns the HTTP code for a known service error, or 0.
func statusForError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return 0
}

// respondWithServiceError writes err as a JSON error. Unknown errors are logged and
// reported as "Failed to <action>." without leaking details.
func respondWithServiceError(c *gin.Context, err error, action string) {
	if code := statusForError(err); code != 0 {
		abortWithError(c, code, err.Error())
		return
	}
	log.Printf("ERROR: Failed to %s (%s %s): %v", action, c.Request.Method, c.FullPath(), err)
	abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
}
