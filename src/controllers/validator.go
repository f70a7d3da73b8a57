package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"Backend-FaceAttend/src/services/attendance"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newValidator reports JSON field names instead of Go struct names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct turns the first failing field into a ValidationError.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &attendance.ValidationError{Field: fe.Field(), Reason: describe(fe)}
	}
	return &attendance.ValidationError{Reason: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "len", "hexadecimal":
		return "must be a 24 character hex id"
	case "gte", "lte":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s element(s)", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

func objectID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, &attendance.ValidationError{Field: field, Reason: "must be a 24 character hex id"}
	}
	return id, nil
}
