// Package docs holds the OpenAPI document of the hub, in the layout swag init generates.
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
        "/health": {"get": {"tags": ["system"], "summary": "Service health", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/metrics": {"get": {"tags": ["system"], "summary": "Prometheus metrics", "responses": {"200": {"description": "OK"}}}},
        "/realtime": {"get": {"tags": ["system"], "summary": "Websocket feed of row changes", "responses": {"101": {"description": "Switching Protocols"}}}},
        "/readings": {
            "post": {
                "tags": ["readings"], "summary": "Ingest a sensor reading",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "reading", "required": true, "schema": {"$ref": "#/definitions/models.RawReading"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/resources.IngestResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/resources.IngestErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/resources.IngestErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/resources.IngestErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/resources.IngestErrorResponse"}}
                }
            },
            "get": {
                "tags": ["readings"], "summary": "Reading history",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "since", "in": "query"},
                    {"type": "string", "name": "crop_id", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.SensorReading"}}}}
            }
        },
        "/readings/latest": {"get": {"tags": ["readings"], "summary": "Latest reading", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SensorReading"}}, "404": {"description": "Not Found"}}}},
        "/readings/status": {"get": {"tags": ["readings"], "summary": "Current status", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/readings/sample": {"post": {"tags": ["readings"], "summary": "Generate a sample reading", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/resources.IngestResponse"}}}}},
        "/devices": {"get": {"tags": ["devices"], "summary": "List devices", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Device"}}}}}},
        "/devices/{id}/toggle": {"post": {"tags": ["devices"], "summary": "Toggle a device", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Device"}}, "404": {"description": "Not Found"}}}},
        "/crops": {
            "get": {"tags": ["crops"], "summary": "List crop profiles", "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CropProfile"}}}}},
            "post": {"tags": ["crops"], "summary": "Create a crop profile", "parameters": [{"in": "body", "name": "crop", "required": true, "schema": {"$ref": "#/definitions/models.CropProfile"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/crops/active": {"get": {"tags": ["crops"], "summary": "Active crop profile", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/crops/active/{id}": {"put": {"tags": ["crops"], "summary": "Select the active crop profile", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/crops/{id}": {
            "get": {"tags": ["crops"], "summary": "Get a crop profile", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["crops"], "summary": "Update a crop profile", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["crops"], "summary": "Delete a crop profile", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/alerts": {"get": {"tags": ["alerts"], "summary": "List alerts", "parameters": [{"type": "boolean", "name": "unread", "in": "query"}, {"type": "string", "name": "sensor_type", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}, {"type": "integer", "name": "offset", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Alert"}}}}}},
        "/alerts/read-all": {"post": {"tags": ["alerts"], "summary": "Dismiss all alerts", "responses": {"200": {"description": "OK"}}}},
        "/alerts/{id}/read": {"post": {"tags": ["alerts"], "summary": "Dismiss an alert", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}},
        "/simulation": {"get": {"tags": ["simulation"], "summary": "Simulator snapshot", "responses": {"200": {"description": "OK"}, "503": {"description": "Simulator disabled"}}}},
        "/simulation/tick": {"post": {"tags": ["simulation"], "summary": "Advance the simulator", "responses": {"200": {"description": "OK"}, "503": {"description": "Simulator disabled"}}}}
    },
    "definitions": {
        "models.RawReading": {"type": "object", "required": ["air_temp", "water_temp", "humidity", "ph", "tds"], "properties": {
            "air_temp": {"type": "number"}, "water_temp": {"type": "number"}, "humidity": {"type": "number"},
            "ph": {"type": "number"}, "tds": {"type": "number"}, "crop_id": {"type": "string"}
        }},
        "models.StatusVector": {"type": "object", "properties": {
            "airTemp": {"type": "string", "enum": ["normal", "warning", "critical"]},
            "waterTemp": {"type": "string", "enum": ["normal", "warning", "critical"]},
            "humidity": {"type": "string", "enum": ["normal", "warning", "critical"]},
            "ph": {"type": "string", "enum": ["normal", "warning", "critical"]},
            "tds": {"type": "string", "enum": ["normal", "warning", "critical"]}
        }},
        "models.SensorReading": {"type": "object", "properties": {
            "id": {"type": "string"}, "air_temp": {"type": "number"}, "water_temp": {"type": "number"},
            "humidity": {"type": "number"}, "ph": {"type": "number"}, "tds": {"type": "number"},
            "status": {"$ref": "#/definitions/models.StatusVector"},
            "created_at": {"type": "string", "format": "date-time"}, "crop_id": {"type": "string"}
        }},
        "models.CropProfile": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"},
            "min_air_temp": {"type": "number"}, "max_air_temp": {"type": "number"},
            "min_water_temp": {"type": "number"}, "max_water_temp": {"type": "number"},
            "min_humidity": {"type": "number"}, "max_humidity": {"type": "number"},
            "min_ph": {"type": "number"}, "max_ph": {"type": "number"},
            "min_tds": {"type": "number"}, "max_tds": {"type": "number"},
            "created_at": {"type": "string", "format": "date-time"}
        }},
        "models.Device": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"},
            "device_type": {"type": "string", "enum": ["pump", "fan", "heater", "humidifier", "light", "ph_adjuster", "other"]},
            "is_on": {"type": "boolean"}, "last_updated": {"type": "string", "format": "date-time"}
        }},
        "models.Alert": {"type": "object", "properties": {
            "id": {"type": "string"}, "message": {"type": "string"}, "sensor_type": {"type": "string"},
            "type": {"type": "string", "enum": ["warning", "critical"]}, "is_read": {"type": "boolean"},
            "created_at": {"type": "string", "format": "date-time"}
        }},
        "resources.IngestResponse": {"type": "object", "properties": {
            "data": {"$ref": "#/definitions/models.SensorReading"}, "status": {"type": "string"}
        }},
        "resources.IngestErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Hydroponics Hub API",
	Description:      "Threshold evaluation, alerting and auto-control for hydroponic grow systems.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
