package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Planner API",
        "description": "Conflict-free weekly schedule generation over a course section catalog",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Planner", "description": "Schedule generation and export"},
        {"name": "Catalog", "description": "Course catalog lookup"},
        {"name": "Admin", "description": "Catalog administration"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Catalog loaded"},
                    "503": {"description": "Catalog not loaded yet"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List every course in the active catalog",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Courses keyed by code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Catalog not loaded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{code}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get a single course",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Course", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown course", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule": {
            "post": {
                "tags": ["Planner"],
                "summary": "Generate diversified conflict-free schedules",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Schedules", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/raw": {
            "post": {
                "tags": ["Planner"],
                "summary": "Generate schedules in search order without diversification",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Schedules", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/export": {
            "post": {
                "tags": ["Planner"],
                "summary": "Export a schedule as CSV or PDF",
                "consumes": ["application/json"],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "Timetable file"},
                    "404": {"description": "Unknown section", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submit": {
            "post": {
                "tags": ["Planner"],
                "summary": "Echo a submitted course list",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitRequest"}}
                ],
                "responses": {
                    "200": {"description": "Received items", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/catalog/reload": {
            "post": {
                "tags": ["Admin"],
                "summary": "Reload the catalog from its source",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Reload queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid token"},
                    "403": {"description": "Not an admin"}
                }
            }
        },
        "/admin/catalog/reload/{id}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get the state of a catalog reload",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Job state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job"}
                }
            }
        }
    },
    "definitions": {
        "ScheduleConstraints": {
            "type": "object",
            "properties": {
                "no840": {"type": "boolean"},
                "day_offs": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "ScheduleRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "array", "items": {"type": "string"}},
                "constraints": {"$ref": "#/definitions/ScheduleConstraints"}
            }
        },
        "SubmitRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SectionRef": {
            "type": "object",
            "required": ["code"],
            "properties": {
                "code": {"type": "string"},
                "crn": {"type": "string", "description": "Preferred over section when set"},
                "section": {"type": "string", "description": "Required when crn is empty"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format", "sections"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "title": {"type": "string"},
                "sections": {"type": "array", "items": {"$ref": "#/definitions/SectionRef"}}
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
