// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/session/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Selectable users",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current acting user",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/customers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "List customers",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Create customer",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/customers/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Get customer by ID",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Update customer",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Delete customer",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/customers/{id}/status": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Progress"],
                "summary": "Change project status",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/customers/{id}/notes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Progress"],
                "summary": "Customer history",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["Progress"],
                "summary": "Add note",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/customers/{id}/proposals": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Consultations"],
                "summary": "List proposals",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["Consultations"],
                "summary": "Create proposal",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/customers/{id}/proposals/{proposalId}": {
            "put": {
                "produces": ["application/json"],
                "tags": ["Consultations"],
                "summary": "Update proposal",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Consultations"],
                "summary": "Delete proposal",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/customers/{id}/advice": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Consultations"],
                "summary": "Installation advice",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/progress": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Progress"],
                "summary": "Progress board",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/consultations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Consultations"],
                "summary": "List consultation customers",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/chargers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Chargers"],
                "summary": "List charger models",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["Chargers"],
                "summary": "Create charger model",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/chargers/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Chargers"],
                "summary": "Get charger model",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "produces": ["application/json"],
                "tags": ["Chargers"],
                "summary": "Update charger model",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Chargers"],
                "summary": "Delete charger model",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Create user",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{id}/toggle-status": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Lock or unlock a user",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Delete user",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/dashboard/metrics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Get dashboard metrics",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/dashboard/map": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Customer map pins",
                "security": [{"UserID": []}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "UserID": {
            "description": "Id of the acting user, see /session/users",
            "type": "apiKey",
            "name": "X-User-ID",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "EV Charger CRM API",
	Description:      "Sales and installation pipeline for EV charger customers",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
