package people

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// InitValidators registers people's struct level validations.
func InitValidators(validate *validator.Validate, _ ut.Translator) {
	validate.RegisterStructValidation(newParentStructValidation, NewParent{})
}

// newParentStructValidation makes the phone number mandatory for parents.
func newParentStructValidation(sl validator.StructLevel) {
	if np, ok := sl.Current().Interface().(NewParent); ok {
		if !np.Phone.Valid {
			sl.ReportError(np.Phone, "phone", "Phone", "required", "")
		}
	}
}
