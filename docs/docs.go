package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in",
                "description": "Exchange email and password for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {"$ref": "#/definitions/LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Account is deactivated"}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["users"],
                "summary": "Current user",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "User information"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/board/nonce": {
            "get": {
                "tags": ["board"],
                "summary": "Issue an anti-forgery token",
                "description": "The token must be sent back in the X-Sticky-Nonce header on every board write",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Nonce", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/presets": {
            "get": {
                "tags": ["board"],
                "summary": "Palette and visibility choices",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Presets", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/notes": {
            "get": {
                "tags": ["board"],
                "summary": "List the notes visible to the caller",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Notes in board order", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["board"],
                "summary": "Add a note at the end of the board",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/Nonce"}],
                "responses": {
                    "201": {"description": "Created note", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/notes/{id}": {
            "get": {
                "tags": ["board"],
                "summary": "Get one note",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/NoteID"}],
                "responses": {
                    "200": {"description": "Note", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Invalid note ID", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "delete": {
                "tags": ["board"],
                "summary": "Delete a note",
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/NoteID"}, {"$ref": "#/parameters/Nonce"}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/Envelope"}},
                    "404": {"description": "Invalid note ID", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/notes/{id}/title": {
            "put": {
                "tags": ["board"],
                "summary": "Rename a note",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/NoteID"},
                    {"$ref": "#/parameters/Nonce"},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"title": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "Updated note", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/notes/{id}/color": {
            "put": {
                "tags": ["board"],
                "summary": "Change a note's color",
                "description": "An invalid color answers 422 and carries the unchanged note",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/NoteID"},
                    {"$ref": "#/parameters/Nonce"},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"color": {"type": "string", "example": "#bae6fd"}}}}
                ],
                "responses": {
                    "200": {"description": "Updated note", "schema": {"$ref": "#/definitions/Envelope"}},
                    "422": {"description": "Invalid color", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/notes/{id}/visibility": {
            "put": {
                "tags": ["board"],
                "summary": "Change who may see a note",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/NoteID"},
                    {"$ref": "#/parameters/Nonce"},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"visibility": {"type": "string", "enum": ["only_me", "all_admins", "editors_and_above"]}}}}
                ],
                "responses": {
                    "200": {"description": "Updated note", "schema": {"$ref": "#/definitions/Envelope"}},
                    "422": {"description": "Invalid visibility", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/notes/{id}/checklist": {
            "put": {
                "tags": ["board"],
                "summary": "Replace a note's checklist",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/NoteID"},
                    {"$ref": "#/parameters/Nonce"},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"checklist": {"type": "array", "items": {"$ref": "#/definitions/TaskItem"}}}}}
                ],
                "responses": {
                    "200": {"description": "Updated note", "schema": {"$ref": "#/definitions/Envelope"}},
                    "422": {"description": "Checklist payload must be a list", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/notes/{id}/collapsed": {
            "put": {
                "tags": ["board"],
                "summary": "Collapse or expand a note for the caller",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/NoteID"},
                    {"$ref": "#/parameters/Nonce"},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"collapsed": {"type": "boolean"}}}}
                ],
                "responses": {
                    "200": {"description": "Note as the caller sees it", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/board/order": {
            "put": {
                "tags": ["board"],
                "summary": "Save the board order",
                "description": "Accepts a JSON array of ids or a comma-separated string. Unknown ids are skipped.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/Nonce"},
                    {"in": "body", "name": "request", "required": true, "schema": {"type": "object", "properties": {"order": {"type": "array", "items": {"type": "integer"}}}}}
                ],
                "responses": {
                    "200": {"description": "Number of notes positioned", "schema": {"$ref": "#/definitions/Envelope"}},
                    "422": {"description": "Empty order list", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        }
    },
    "parameters": {
        "NoteID": {"in": "path", "name": "id", "type": "integer", "required": true, "description": "Note ID"},
        "Nonce": {"in": "header", "name": "X-Sticky-Nonce", "type": "string", "required": true, "description": "Anti-forgery token from /board/nonce"}
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "admin@example.com"},
                "password": {"type": "string"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error_message": {"type": "string"}
            }
        },
        "TaskItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "text": {"type": "string"},
                "completed": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Sticky Board API",
	Description:      "Shared board of draggable sticky notes with per-note visibility",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
