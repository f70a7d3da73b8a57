// Package docs holds the hand-maintained OpenAPI description served under /swagger/*.
// It follows the layout "swag init" emits so it can be regenerated from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/attendance/biometric": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Mark attendance from a face match",
                "parameters": [
                    {"description": "Recognition result", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.MarkBiometricRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.MarkResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/attendance/manual": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Mark attendance by hand",
                "parameters": [
                    {"description": "Manual mark", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.MarkManualRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.MarkResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/attendance/finalize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Close today's session",
                "parameters": [
                    {"description": "Session to close", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.FinalizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.FinalizeResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/attendance/{attendanceId}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Cancel a mistaken attendance",
                "parameters": [
                    {"type": "string", "description": "Attendance ID", "name": "attendanceId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CancelResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/attendance/unmarked": {
            "get": {
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Members not marked yet today",
                "parameters": [
                    {"type": "string", "description": "Class ID", "name": "classId", "in": "query", "required": true},
                    {"type": "string", "description": "Course ID", "name": "courseId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.MemberSummary"}}}
                }
            }
        },
        "/attendance/today": {
            "get": {
                "produces": ["application/json"],
                "tags": ["attendance"],
                "summary": "Today's records of a course",
                "parameters": [
                    {"type": "string", "description": "Course ID", "name": "courseId", "in": "query", "required": true},
                    {"type": "integer", "description": "Page size (capped)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "desc (default) or asc", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.TodayEntry"}}}
                }
            }
        },
        "/classes/{classId}/roster": {
            "get": {
                "produces": ["application/json"],
                "tags": ["classes"],
                "summary": "Enrolled members of a class",
                "parameters": [
                    {"type": "string", "description": "Class ID", "name": "classId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.MemberSummary"}}}
                }
            }
        },
        "/settings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Read the caller's settings, creating defaults on first access",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OperatorSettings"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Replace the caller's settings",
                "parameters": [
                    {"description": "New settings", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.OperatorSettings"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "message": {"type": "string"},
                "field": {"type": "string"},
                "alreadyMarked": {"type": "boolean"}
            }
        },
        "models.MarkBiometricRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "courseId": {"type": "string"},
                "classId": {"type": "string"},
                "confidenceScore": {"type": "number"},
                "faceDescriptor": {"type": "array", "items": {"type": "number"}}
            }
        },
        "models.MarkManualRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "courseId": {"type": "string"},
                "classId": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "late", "absent"]}
            }
        },
        "models.FinalizeRequest": {
            "type": "object",
            "properties": {
                "classId": {"type": "string"},
                "courseId": {"type": "string"},
                "markAbsent": {"type": "boolean"}
            }
        },
        "models.FinalizeResult": {
            "type": "object",
            "properties": {
                "present": {"type": "integer"},
                "late": {"type": "integer"},
                "absent": {"type": "integer"},
                "unmarked": {"type": "integer"},
                "newlyAbsent": {"type": "integer"}
            }
        },
        "models.AttendanceRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentId": {"type": "string"},
                "courseId": {"type": "string"},
                "classId": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "late", "absent"]},
                "confidenceScore": {"type": "number"},
                "source": {"type": "string", "enum": ["biometric", "manual", "system"]},
                "sessionDay": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "models.TodayEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentId": {"type": "string"},
                "studentName": {"type": "string"},
                "rollId": {"type": "string"},
                "status": {"type": "string"},
                "confidenceScore": {"type": "number"},
                "source": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "models.MarkResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "attendance": {"$ref": "#/definitions/models.AttendanceRecord"}
            }
        },
        "models.CancelResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "attendance": {"$ref": "#/definitions/models.AttendanceRecord"}
            }
        },
        "models.MemberSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "rollId": {"type": "string"},
                "hasSignature": {"type": "boolean"}
            }
        },
        "models.OperatorSettings": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "operatorId": {"type": "string"},
                "operatorKind": {"type": "string", "enum": ["admin", "teacher"]},
                "lateCutoff": {"type": "string", "example": "09:00"},
                "preferences": {"type": "object"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.SettingsRequest": {
            "type": "object",
            "properties": {
                "lateCutoff": {"type": "string", "example": "08:30"},
                "preferences": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Face Attendance API",
	Description:      "Attendance session engine: biometric and manual marking, finalization and cancellation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
