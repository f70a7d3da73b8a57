package attendance

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrDegenerateSignature is returned by Fuse when the blended vector has zero length.
var ErrDegenerateSignature = errors.New("blended signature has zero norm")

// ValidationError missing or malformed input; nothing was changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DuplicateError an attendance record already exists for the key.
type DuplicateError struct {
	MemberID primitive.ObjectID
	CourseID primitive.ObjectID
	Day      time.Time
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("attendance already marked for member %s in course %s on %s",
		e.MemberID.Hex(), e.CourseID.Hex(), e.Day.Format("2006-01-02"))
}

// AlreadyMarked lets callers tell a duplicate apart from any other failure.
func (e *DuplicateError) AlreadyMarked() bool { return true }

// NotFoundError a referenced member, course, class or record does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func notFound(kind string, id primitive.ObjectID) error {
	return &NotFoundError{Kind: kind, ID: id.Hex()}
}

// NumericError the signature fusion could not produce a usable vector.
type NumericError struct {
	Err error
}

func (e *NumericError) Error() string { return "signature fusion: " + e.Err.Error() }
func (e *NumericError) Unwrap() error { return e.Err }

// StorageError any persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// storageErr wraps err unless it already belongs to the taxonomy.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		dup *DuplicateError
		nf  *NotFoundError
		ve  *ValidationError
		se  *StorageError
	)
	if errors.As(err, &dup) || errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsDuplicate reports whether err means the attendance already exists.
func IsDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.As(err, &dup)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
