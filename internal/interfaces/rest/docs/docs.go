// Package docs registers the Swagger 2 description of the HTTP surface with
// swag. Regenerate with `swag init -g cmd/vpnshop/main.go -o internal/interfaces/rest/docs`
// after changing handler annotations.
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
        "/api/confirm_stars": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Confirm a Telegram Stars payment",
                "parameters": [
                    {"type": "string", "description": "Shared bot secret", "name": "X-Internal-Secret", "in": "header"},
                    {"description": "Confirmation", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ConfirmRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.IssueResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}}
                }
            }
        },
        "/api/order": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Create a Crypto Pay invoice for a plan",
                "parameters": [
                    {"description": "Order", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.OrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.OrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}}
                }
            }
        },
        "/cryptopay/webhook": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Receive a Crypto Pay invoice update",
                "parameters": [
                    {"type": "string", "description": "Shared webhook token", "name": "X-Webhook-Token", "in": "header"},
                    {"type": "string", "description": "Gateway body signature", "name": "crypto-pay-api-signature", "in": "header"},
                    {"description": "Invoice update", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.IssueResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/rest.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ConfirmRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "100"},
                "charge_id": {"type": "string"},
                "language_code": {"type": "string"},
                "plan": {"type": "string"},
                "user_id": {"type": "integer"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {"ok": {"type": "boolean"}}
        },
        "handlers.IssueResponse": {
            "type": "object",
            "properties": {
                "creds_id": {"type": "string"},
                "note": {"type": "string"},
                "ok": {"type": "boolean"},
                "sent": {"type": "boolean"},
                "status": {"type": "string"}
            }
        },
        "handlers.OrderRequest": {
            "type": "object",
            "required": ["initData", "plan", "price"],
            "properties": {
                "initData": {"type": "string"},
                "plan": {"type": "string"},
                "price": {"type": "string", "example": "5.50"}
            }
        },
        "handlers.OrderResponse": {
            "type": "object",
            "properties": {
                "duplicate": {"type": "boolean"},
                "ok": {"type": "boolean"},
                "pay_url": {"type": "string"},
                "verified": {"type": "boolean"}
            }
        },
        "rest.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "ok": {"type": "boolean"}
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
	Title:            "vpnshop gateway",
	Description:      "Payment intake for the VPN subscription mini-app.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
