package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Thi Dua API",
        "description": "Classroom behavior point tracking for Vietnamese primary classes",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Teams", "description": "Team and student roster"},
        {"name": "Points", "description": "Point awards and deductions"},
        {"name": "Dashboard", "description": "Leaderboard, Hall of Fame and watchlist"},
        {"name": "History", "description": "Point history log"},
        {"name": "Attendance", "description": "Daily attendance sheets"},
        {"name": "Behaviors", "description": "Behavior catalog"},
        {"name": "School Years", "description": "School year lifecycle"},
        {"name": "Avatars", "description": "Uploaded avatar gallery"},
        {"name": "Exports", "description": "Async history exports"}
    ],
    "paths": {
        "/teams": {
            "get": {
                "tags": ["Teams"],
                "summary": "List teams with their students",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teams"],
                "summary": "Create team",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeamRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teams/{id}": {
            "put": {
                "tags": ["Teams"],
                "summary": "Update team",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeamRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teams"],
                "summary": "Delete team and its students",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/students": {
            "post": {
                "tags": ["Teams"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/bulk": {
            "post": {
                "tags": ["Teams"],
                "summary": "Enroll several students into one team",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkStudentsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "put": {
                "tags": ["Teams"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teams"],
                "summary": "Delete student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/students/{id}/points": {
            "post": {
                "tags": ["Points"],
                "summary": "Apply points to a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApplyPointsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/points/batch": {
            "post": {
                "tags": ["Points"],
                "summary": "Apply points to several students at once",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchPointsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scores/reset": {
            "post": {
                "tags": ["Points"],
                "summary": "Reset all scores and clear history for the active year",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/leaderboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Team and student leaderboard for a time window",
                "parameters": [
                    {"name": "window", "in": "query", "type": "string", "enum": ["all", "day", "week", "month", "custom"]},
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/hall-of-fame": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Top positive earners podium",
                "parameters": [
                    {"name": "window", "in": "query", "type": "string", "enum": ["all", "day", "week", "month", "custom"]},
                    {"name": "period", "in": "query", "type": "string", "enum": ["week", "month"]},
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/watchlist": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Students with repeated negative marks this week",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history": {
            "get": {
                "tags": ["History"],
                "summary": "Paged point history, newest first",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history/export": {
            "get": {
                "tags": ["History"],
                "summary": "Download history as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/attendance/{date}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance sheet for a day",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Attendance"],
                "summary": "Replace the attendance sheet for a day",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/behaviors": {
            "get": {
                "tags": ["Behaviors"],
                "summary": "List behavior catalog entries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Behaviors"],
                "summary": "Create behavior",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BehaviorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/behaviors/{id}": {
            "put": {
                "tags": ["Behaviors"],
                "summary": "Update behavior",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BehaviorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Behaviors"],
                "summary": "Delete behavior",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/school-years": {
            "get": {
                "tags": ["School Years"],
                "summary": "List school years with the active one marked",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["School Years"],
                "summary": "Create school year",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SchoolYearRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/school-years/{id}": {
            "put": {
                "tags": ["School Years"],
                "summary": "Update school year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SchoolYearRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["School Years"],
                "summary": "Delete school year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/school-years/{id}/activate": {
            "post": {
                "tags": ["School Years"],
                "summary": "Switch the active school year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/avatars": {
            "get": {
                "tags": ["Avatars"],
                "summary": "List uploaded avatars",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Avatars"],
                "summary": "Upload avatar",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvatarRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/avatars/{id}": {
            "delete": {
                "tags": ["Avatars"],
                "summary": "Delete uploaded avatar",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportJobRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Get export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export result",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Exported file"}
                }
            }
        }
    },
    "definitions": {
        "TeamRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "color": {"type": "string"}
            },
            "required": ["name", "color"]
        },
        "StudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "team_id": {"type": "integer"},
                "avatar": {"type": "string"}
            },
            "required": ["name", "team_id"]
        },
        "BulkStudentsRequest": {
            "type": "object",
            "properties": {
                "team_id": {"type": "integer"},
                "names": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["team_id", "names"]
        },
        "ApplyPointsRequest": {
            "type": "object",
            "properties": {
                "points": {"type": "integer"},
                "reason": {"type": "string"}
            },
            "required": ["points", "reason"]
        },
        "BatchPointsRequest": {
            "type": "object",
            "properties": {
                "student_ids": {"type": "array", "items": {"type": "integer"}},
                "points": {"type": "integer"},
                "reason": {"type": "string"}
            },
            "required": ["student_ids", "points", "reason"]
        },
        "SaveAttendanceRequest": {
            "type": "object",
            "properties": {
                "statuses": {
                    "type": "object",
                    "description": "Map of student ID to status",
                    "additionalProperties": {"type": "string", "enum": ["present", "excused", "unexcused"]}
                }
            },
            "required": ["statuses"]
        },
        "BehaviorRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string", "enum": ["positive", "negative"]},
                "description": {"type": "string"},
                "points": {"type": "integer"}
            },
            "required": ["category", "description", "points"]
        },
        "SchoolYearRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"}
            },
            "required": ["name", "start_date", "end_date"]
        },
        "AvatarRequest": {
            "type": "object",
            "properties": {
                "data": {"type": "string"}
            },
            "required": ["data"]
        },
        "ExportJobRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "from": {"type": "string", "format": "date-time"},
                "to": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
