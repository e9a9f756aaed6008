// Package docs registers the OpenAPI description served by gin-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/invoice": {
            "get": {
                "produces": ["application/json"],
                "summary": "List the product catalog",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Finalize a cart into an order",
                "parameters": [
                    {"in": "body", "name": "cart", "required": true, "schema": {"$ref": "#/definitions/FinalizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "order created"},
                    "400": {"description": "empty cart or zero total"},
                    "401": {"description": "login required"},
                    "500": {"description": "storage failure"}
                }
            }
        },
        "/history": {
            "get": {
                "produces": ["application/json"],
                "summary": "List the caller's orders, newest first",
                "responses": {"200": {"description": "OK"}, "401": {"description": "login required"}}
            }
        },
        "/analytics": {
            "get": {
                "produces": ["application/json"],
                "summary": "Sales totals, top products, monthly series and product revenue",
                "parameters": [
                    {"in": "query", "name": "date", "type": "string", "format": "date", "required": false}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "bad date"}, "401": {"description": "login required"}}
            }
        }
    },
    "definitions": {
        "CartItem": {
            "type": "object",
            "properties": {
                "product_id": {"type": "integer"},
                "quantity": {"type": "integer"}
            }
        },
        "FinalizeRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/CartItem"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "possales API",
	Description:      "Point-of-sale orders and sales analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
