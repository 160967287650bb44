// Package docs registers the Swagger document served under /swagger/ by
// cmd/api. It follows the layout swag init emits and must be kept in step
// with the @Router annotations on the cmd/api handlers.
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
        "/cart": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get cart",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}}
                }
            },
            "delete": {
                "summary": "Clear cart",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/cart/items": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Add to cart",
                "parameters": [
                    {
                        "description": "Product",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/cart.Product"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/main.cartView"}}
                }
            }
        },
        "/cart/items/{id}/decrement": {
            "post": {
                "produces": ["application/json"],
                "summary": "Decrement item",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}}
                }
            }
        },
        "/cart/items/{id}/increment": {
            "post": {
                "produces": ["application/json"],
                "summary": "Increment item",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.cartView"}}
                }
            }
        }
    },
    "definitions": {
        "cart.Product": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "image_url": {"type": "string"},
                "price": {"type": "number"},
                "title": {"type": "string"}
            }
        },
        "main.cartView": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/main.itemView"}},
                "total": {"type": "number"}
            }
        },
        "main.itemView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "image_url": {"type": "string"},
                "price": {"type": "number"},
                "quantity": {"type": "integer"},
                "subtotal": {"type": "number"},
                "title": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8443",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cartflow API",
	Description:      "Local shopping cart for a UI shell",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
