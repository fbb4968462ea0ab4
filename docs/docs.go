// Package docs registers the swagger spec served at /swagger.
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
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Paginated report listing",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Create a report",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/reports/{id}/finalize": {
            "post": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Finalize a report",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Mandatory items missing"},
                    "409": {"description": "Finalized concurrently"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "go-inspect API",
	Description:      "Maintenance inspection reports backend",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
