// Package docs registers the storefront OpenAPI document with swag so that
// gin-swagger can serve it under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/signup": {"post": {"tags": ["shop"], "summary": "Register a customer", "responses": {"201": {"description": "token and user"}, "400": {"description": "validation failed or email taken"}}}},
        "/login": {"post": {"tags": ["shop"], "summary": "Log in", "responses": {"200": {"description": "token and user"}, "401": {"description": "invalid credentials"}}}},
        "/products": {"get": {"tags": ["shop"], "summary": "List products", "parameters": [{"name": "category", "in": "query", "type": "string"}, {"name": "q", "in": "query", "type": "string"}], "responses": {"200": {"description": "products"}}}},
        "/featured": {"get": {"tags": ["shop"], "summary": "Featured products", "responses": {"200": {"description": "products"}}}},
        "/hotdeals": {"get": {"tags": ["shop"], "summary": "Hot deals", "responses": {"200": {"description": "products"}}}},
        "/view/{id}": {"get": {"tags": ["shop"], "summary": "Get a product", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "product"}, "404": {"description": "not found"}}}},
        "/categories": {"get": {"tags": ["shop"], "summary": "Categories headed by All", "responses": {"200": {"description": "labels"}}}},
        "/cart/add": {"post": {"tags": ["cart"], "security": [{"BearerAuth": []}], "summary": "Add to cart", "responses": {"200": {"description": "cart"}, "404": {"description": "unknown product"}}}},
        "/cart": {"get": {"tags": ["cart"], "security": [{"BearerAuth": []}], "summary": "Resolved cart", "responses": {"200": {"description": "cart items"}}}},
        "/cart/{id}": {
            "put": {"tags": ["cart"], "security": [{"BearerAuth": []}], "summary": "Set quantity", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "cart items"}, "400": {"description": "quantity below 1"}, "404": {"description": "not in cart"}}},
            "delete": {"tags": ["cart"], "security": [{"BearerAuth": []}], "summary": "Remove from cart", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "cart items"}}}
        },
        "/checkout": {"post": {"tags": ["orders"], "security": [{"BearerAuth": []}], "summary": "Place an order from the cart", "responses": {"201": {"description": "order"}, "400": {"description": "empty cart or out of stock"}}}},
        "/orders": {"get": {"tags": ["orders"], "summary": "Customer orders (shop, bearer) or all orders (admin)", "responses": {"200": {"description": "orders"}}}},
        "/add": {"post": {"tags": ["admin"], "summary": "Create a product from JSON or multipart form", "consumes": ["application/json", "multipart/form-data"], "responses": {"201": {"description": "product"}, "400": {"description": "validation failed"}}}},
        "/view": {"get": {"tags": ["admin"], "summary": "All products, newest first", "responses": {"200": {"description": "products"}}}},
        "/editproducts/{id}": {"put": {"tags": ["admin"], "summary": "Partially update a product", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "product"}, "404": {"description": "not found"}}}},
        "/delete/{id}": {"delete": {"tags": ["admin"], "summary": "Delete a product", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "deleted"}, "404": {"description": "not found"}}}},
        "/site-info": {
            "get": {"tags": ["admin"], "summary": "Site info", "responses": {"200": {"description": "site info"}}},
            "put": {"tags": ["admin"], "summary": "Update site info", "responses": {"200": {"description": "site info"}}}
        },
        "/users": {"get": {"tags": ["admin"], "summary": "Users with carts and orders", "responses": {"200": {"description": "users"}}}},
        "/orders/{userId}/{orderId}/deliver": {"put": {"tags": ["admin"], "summary": "Mark an order delivered", "parameters": [{"name": "userId", "in": "path", "required": true, "type": "string"}, {"name": "orderId", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "order"}, "400": {"description": "already delivered"}, "404": {"description": "not found"}}}},
        "/health": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Shop and admin endpoints of the storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
