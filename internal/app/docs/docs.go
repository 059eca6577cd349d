// Package docs holds the hand-maintained swagger document registered with
// gin-swagger; keep it in step with the handler annotations when routes
// change.
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
        "/hello/{name}": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["misc"],
                "summary": "Greet a caller.",
                "parameters": [
                    {"type": "string", "description": "caller name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        },
        "/ping/{num}": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["misc"],
                "summary": "Liveness probe.",
                "parameters": [
                    {"type": "integer", "description": "probe number", "name": "num", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        },
        "/update": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["watchdog"],
                "summary": "Ingest a host status snapshot.",
                "parameters": [
                    {"description": "status payload", "name": "data", "in": "body", "required": true, "schema": {"$ref": "#/definitions/snapshot.UpdateRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Status"}}}
            }
        },
        "/info": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["watchdog"],
                "summary": "Render the fleet status table.",
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}}
            }
        },
        "/info2": {
            "get": {
                "produces": ["application/json"],
                "tags": ["watchdog"],
                "summary": "Dump all live snapshots.",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/snapshot.Snapshot"}}}}
            }
        },
        "/searchpid/{hostname}/{pid}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["watchdog"],
                "summary": "Look up the recorded path for a host/pid pair.",
                "parameters": [
                    {"type": "string", "description": "hostname", "name": "hostname", "in": "path", "required": true},
                    {"type": "string", "description": "process id", "name": "pid", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Status"}}}
            }
        }
    },
    "definitions": {
        "response.Status": {
            "type": "object",
            "properties": {
                "status": {}
            }
        },
        "snapshot.Snapshot": {
            "type": "object",
            "properties": {
                "hostname": {"type": "string"},
                "gpu": {"type": "array", "items": {"type": "string"}},
                "net": {"type": "object", "additionalProperties": true},
                "mem": {"type": "object", "additionalProperties": true},
                "swap": {"type": "object", "additionalProperties": true},
                "cpu": {"type": "object", "additionalProperties": true},
                "other": {"type": "object", "additionalProperties": true},
                "received_at": {"type": "string"}
            }
        },
        "snapshot.UpdateRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string"},
                "hostname": {"type": "string"},
                "gpu": {"type": "string"},
                "net": {"type": "string"},
                "mem": {"type": "string"},
                "swap": {"type": "string"},
                "cpu": {"type": "string"},
                "other": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "watchdog",
	Description:      "fleet watchdog collector backend",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
