package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxProductNumLen = 16

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("productnum", validateProductNum)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Product number goes to URL path, so only ASCII letters and digits are allowed
func validateProductNum(fl validator.FieldLevel) bool {
	number := fl.Field().String()
	if len(number) == 0 || len(number) > maxProductNumLen {
		return false
	}

	for i := 0; i < len(number); i++ {
		c := number[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
