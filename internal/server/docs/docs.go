// Package docs registers the swagger spec of the SSO central API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "SSO Probe Maintainers",
            "url": "https://github.com/raysh454/ssoprobe"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/post": {
            "post": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Check a bearer token",
                "parameters": [
                    {"type": "string", "description": "Bearer <token>", "name": "Authorization", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.APIPostResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/jwt": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tokens"],
                "summary": "Issue a bearer token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.TokenResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/probes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["probes"],
                "summary": "List retained activations",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/app.Activation"}}}
                }
            }
        },
        "/probes/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["probes"],
                "summary": "Get one activation",
                "parameters": [
                    {"type": "string", "description": "Activation id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Activation"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["probes"],
                "summary": "Run a probe and wait for its result",
                "parameters": [
                    {"enum": ["echo", "frame", "fetch", "token"], "type": "string", "description": "Probe kind", "name": "id", "in": "path", "required": true},
                    {"description": "Probe input", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/server.RunProbeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ProbeResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["probes"],
                "summary": "Cancel a pending activation",
                "parameters": [
                    {"type": "string", "description": "Activation id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "app.Activation": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "request": {"$ref": "#/definitions/model.ProbeRequest"},
                "status": {"type": "string"},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "ended_at": {"type": "string"},
                "result": {"$ref": "#/definitions/model.ProbeResult"}
            }
        },
        "model.ProbeRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "page": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "model.ProbeResult": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "status": {"type": "string"},
                "error": {"type": "string"},
                "error_kind": {"type": "string"},
                "started_at": {"type": "string"},
                "ended_at": {"type": "string"},
                "echo": {"type": "object"},
                "frame": {"type": "object"},
                "fetch": {"type": "object"},
                "token": {"type": "object"}
            }
        },
        "server.APIPostResponse": {
            "type": "object",
            "properties": {
                "method": {"type": "string", "example": "POST"},
                "subject": {"type": "string", "example": "ssocentral-user"},
                "issuer": {"type": "string", "example": "ssocentral"},
                "token_id": {"type": "string"},
                "expires_at": {"type": "integer", "example": 1767225600}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "not found"}
            }
        },
        "server.RunProbeRequest": {
            "type": "object",
            "properties": {
                "url": {"type": "string", "example": "/jwt"},
                "page": {"type": "string", "example": "https://sso.example.com/"}
            }
        },
        "server.TokenResponse": {
            "type": "object",
            "properties": {
                "Token": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SSO Central API",
	Description:      "Console page, echo socket, token endpoints and the probe API of the SSO central test server.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
