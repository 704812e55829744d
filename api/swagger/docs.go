package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Hogwarts Timetable API",
        "description": "Timetable scheduling, conflict detection, and teacher substitution",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Slots", "description": "Timetable slot allocation"},
        {"name": "Timetable", "description": "Weekly grid views and export"},
        {"name": "Conflicts", "description": "Dry-run conflict detection"},
        {"name": "Suggestions", "description": "Alternative teacher/room proposals"},
        {"name": "WeekConfig", "description": "Working-week configuration"},
        {"name": "Generator", "description": "Bulk timetable generation"},
        {"name": "Absences", "description": "Teacher absence workflow"},
        {"name": "Substitutions", "description": "Substitution records"}
    ],
    "paths": {
        "/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List timetable slots",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Slots"],
                "summary": "Create a timetable slot",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Slot conflicts on one or more axes"}
                }
            }
        },
        "/slots/{id}": {
            "put": {
                "tags": ["Slots"],
                "summary": "Update a timetable slot",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Slot conflicts on one or more axes"}
                }
            },
            "delete": {
                "tags": ["Slots"],
                "summary": "Delete a timetable slot",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Weekly grid for a class or teacher",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export the weekly grid as PDF",
                "produces": ["application/pdf"],
                "responses": {"200": {"description": "PDF document"}}
            }
        },
        "/conflicts/check": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Check a candidate slot without writing",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/conflicts/terms/{termId}": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Audit a term for conflicting slot pairs",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/suggestions": {
            "post": {
                "tags": ["Suggestions"],
                "summary": "Propose conflict-free alternatives",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/week-config": {
            "get": {
                "tags": ["WeekConfig"],
                "summary": "Effective working week for a term",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["WeekConfig"],
                "summary": "Create or replace a configuration",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/generate": {
            "post": {
                "tags": ["Generator"],
                "summary": "Run one greedy generation pass",
                "responses": {"200": {"description": "Partial-success report"}}
            }
        },
        "/absences": {
            "get": {
                "tags": ["Absences"],
                "summary": "List teacher absences",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Absences"],
                "summary": "Report a teacher absence",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/absences/{id}": {
            "get": {
                "tags": ["Absences"],
                "summary": "Fetch one absence",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/absences/{id}/approve": {
            "post": {
                "tags": ["Absences"],
                "summary": "Approve an absence and seed substitutions",
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Occurrences could not be covered"}
                }
            }
        },
        "/absences/{id}/cancel": {
            "post": {
                "tags": ["Absences"],
                "summary": "Cancel an absence",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/absences/{id}/progress": {
            "get": {
                "tags": ["Absences"],
                "summary": "Substitution coverage summary",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/substitutions": {
            "get": {
                "tags": ["Substitutions"],
                "summary": "List substitution records",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/substitutions/{id}/respond": {
            "post": {
                "tags": ["Substitutions"],
                "summary": "Confirm or decline a pending record",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Record is not pending"}
                }
            }
        },
        "/substitutions/{id}/reassign": {
            "post": {
                "tags": ["Substitutions"],
                "summary": "Reassign a declined occurrence",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Record is not declined"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
