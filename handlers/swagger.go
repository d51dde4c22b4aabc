package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>lumen API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the auth and session endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "lumen", "version": "v0.1.0" },
  "paths": {
    "/api/auth/signin": {
      "get": {
        "summary": "Start an OAuth sign-in",
        "parameters": [
          { "name": "provider", "in": "query", "schema": { "type": "string" } },
          { "name": "callbackUrl", "in": "query", "schema": { "type": "string" } }
        ],
        "responses": { "302": { "description": "redirect to the provider" }, "400": { "description": "unknown provider" } }
      }
    },
    "/api/auth/callback/{provider}": {
      "get": {
        "summary": "OAuth redirect target; issues the session cookie",
        "parameters": [
          { "name": "provider", "in": "path", "required": true, "schema": { "type": "string" } },
          { "name": "code", "in": "query", "schema": { "type": "string" } },
          { "name": "state", "in": "query", "schema": { "type": "string" } }
        ],
        "responses": { "302": { "description": "signed in" }, "400": { "description": "state mismatch or provider error" }, "401": { "description": "authentication failed" } }
      }
    },
    "/api/auth/signout": {
      "post": { "summary": "End the current session", "responses": { "200": { "description": "signed out" } } }
    },
    "/api/auth/session": {
      "get": { "summary": "Current session or an empty object", "responses": { "200": { "description": "session" } } }
    },
    "/api/auth/providers": {
      "get": { "summary": "Configured sign-in providers", "responses": { "200": { "description": "providers by id" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Signed-in user and their chats", "responses": { "200": { "description": "user and chats" }, "401": { "description": "authentication required" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
