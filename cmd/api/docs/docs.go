// Package docs registers the generated OpenAPI document with the swagger
// handler. Regenerate with:
//
//	swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/documents": {
            "post": {
                "tags": ["Documents"],
                "summary": "Ingest a knowledge-base document",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/documents/{id}": {
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete a document and its chunks",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/query": {
            "post": {
                "tags": ["Query"],
                "summary": "Search the knowledge base",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/calls/{callId}/turn": {
            "post": {
                "tags": ["Calls"],
                "summary": "Process one conversational turn",
                "parameters": [{"type": "string", "name": "callId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/calls/{callId}": {
            "delete": {
                "tags": ["Calls"],
                "summary": "End a call and destroy its state",
                "parameters": [{"type": "string", "name": "callId", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/reindex": {
            "post": {
                "tags": ["Jobs"],
                "summary": "Trigger an asynchronous reindex",
                "responses": {"202": {"description": "Accepted"}, "503": {"description": "Queue full"}}
            }
        },
        "/jobs/{id}": {
            "get": {
                "tags": ["Jobs"],
                "summary": "Get reindex job status",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Service health",
                "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Voice Desk Orchestrator API",
	Description:      "Retrieval-augmented conversational orchestrator for the customer service desk.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
