package assessment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	examXorAssignmentTag  = "exam_xor_assignment"
	examXorAssignmentText = "exactly one of exam_id or assignment_id is required"
)

// InitValidators registers assessment's struct level validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newResultStructValidation, NewResult{})
	core.RegisterCustomTranslation(validate, translator, examXorAssignmentTag, examXorAssignmentText)
}

// newResultStructValidation makes sure a Result grades either an exam or an assignment.
func newResultStructValidation(sl validator.StructLevel) {
	if nr, ok := sl.Current().Interface().(NewResult); ok {
		if nr.ExamID.Valid == nr.AssignmentID.Valid {
			sl.ReportError(nr.ExamID, "exam_id", "ExamID", examXorAssignmentTag, "")
			sl.ReportError(nr.AssignmentID, "assignment_id", "AssignmentID", examXorAssignmentTag, "")
		}
	}
}
