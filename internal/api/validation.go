package api

import (
	"errors"
	"focuscoach/coaching-app/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// validate checks domain enums on query and body structs after gin has bound them.
// Struct tags use the "validate" key; gin's own "binding" rules run first.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "leadstatus", func(fl validator.FieldLevel) bool {
		return domain.LeadStatus(fl.Field().String()).Valid()
	})
	mustRegister(v, "tagtype", func(fl validator.FieldLevel) bool {
		return domain.TagType(fl.Field().String()).Valid()
	})
	mustRegister(v, "interval", func(fl validator.FieldLevel) bool {
		return domain.BillingInterval(fl.Field().String()).Valid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validationDetails maps each failing field to the rule it broke.
func validationDetails(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		details[fe.Field()] = fe.Tag()
	}
	return details
}

func abortWithValidationError(c *gin.Context, err error) {
	if details := validationDetails(err); details != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Validation error", "fields": details})
		return
	}
	abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
}

// bindJSON binds the body with gin's binding rules, then runs validate.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithValidationError(c, err)
		return false
	}
	if err := validate.Struct(req); err != nil {
		abortWithValidationError(c, err)
		return false
	}
	return true
}
