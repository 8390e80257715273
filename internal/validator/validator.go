package validator

import (
	"reflect"
	"slices"
	"strings"

	apperrors "github.com/SAP-F-2025/quiz-session-service/internal/errors"
	"github.com/SAP-F-2025/quiz-session-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the service's struct rules
type Validator struct {
	structValidator *validator.Validate
}

// New creates a validator with all custom rules registered
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates tags and struct-level rules and returns the raw
// validator error
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate runs ValidateStruct and converts field errors to ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterStructValidation(validateSubmitAttempt, models.SubmitAttemptRequest{})
	validate.RegisterStructValidation(validateCreateQuestion, models.CreateQuestionRequest{})

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateSubmitAttempt(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.SubmitAttemptRequest)

	if req.Score > req.TotalQuestions {
		sl.ReportError(req.Score, "score", "Score", "score_range", "")
	}
	if req.TotalQuestions > 0 && len(req.Answers) != req.TotalQuestions {
		sl.ReportError(req.Answers, "answers", "Answers", "answer_count", "")
	}
}

func validateCreateQuestion(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.CreateQuestionRequest)

	if req.CorrectOption != "" && !slices.Contains(req.Options, req.CorrectOption) {
		sl.ReportError(req.CorrectOption, "correct_answer", "CorrectOption", "correct_option", "")
	}
}
