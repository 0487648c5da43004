// Package docs registers the swagger spec for the HTTP API. It is written by
// hand in the shape swag init generates.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "ESC/POS Emulator API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Reports overall service health including database connectivity",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/api/v1/sessions": {
            "post": {
                "description": "Allocates a new decoder session and returns its identity",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Create session",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/api/v1/sessions/{session_id}/audit": {
            "get": {
                "description": "Returns a paginated page of a session's persisted audit records",
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "List audit records",
                "parameters": [
                    {"type": "string", "name": "session_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8084",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ESC/POS Emulator API",
	Description:      "Streaming ESC/POS decoder and BLE thermal-printer emulator, driven over WebSocket",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
