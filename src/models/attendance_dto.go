package models

// MarkBiometricRequest payload sent by the recognition client
type MarkBiometricRequest struct {
	StudentID       string    `json:"studentId" validate:"required,hexadecimal,len=24"`
	CourseID        string    `json:"courseId" validate:"required,hexadecimal,len=24"`
	ClassID         string    `json:"classId" validate:"required,hexadecimal,len=24"`
	ConfidenceScore float64   `json:"confidenceScore" validate:"gte=0,lte=1"`
	FaceDescriptor  []float64 `json:"faceDescriptor" validate:"required,min=1"`
}

// MarkManualRequest payload sent by an operator marking by hand
type MarkManualRequest struct {
	StudentID string `json:"studentId" validate:"required,hexadecimal,len=24"`
	CourseID  string `json:"courseId" validate:"required,hexadecimal,len=24"`
	ClassID   string `json:"classId" validate:"required,hexadecimal,len=24"`
	Status    string `json:"status" validate:"required,oneof=present late absent"`
}

// FinalizeRequest closes the session of a class/course for today
type FinalizeRequest struct {
	ClassID    string `json:"classId" validate:"required,hexadecimal,len=24"`
	CourseID   string `json:"courseId" validate:"required,hexadecimal,len=24"`
	MarkAbsent bool   `json:"markAbsent"`
}

// SettingsRequest whole-document replacement of the caller's settings
type SettingsRequest struct {
	LateCutoff  string                 `json:"lateCutoff" validate:"required"`
	Preferences map[string]interface{} `json:"preferences"`
}

// MarkResponse returned after a successful mark
type MarkResponse struct {
	Message    string           `json:"message"`
	Attendance AttendanceRecord `json:"attendance"`
}

// CancelResponse reports which record was undone
type CancelResponse struct {
	Message    string           `json:"message"`
	Attendance AttendanceRecord `json:"attendance"`
}
