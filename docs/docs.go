// Package docs holds the OpenAPI document served under /swagger/. Keep it in
// sync with the handler annotations in internal/transport/http.
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
        "/artifacts/{name}": {
            "get": {
                "description": "Returns a generated audio file from the NATS object store mirror.",
                "produces": ["audio/wav"],
                "tags": ["synthesis"],
                "summary": "Fetch a mirrored file",
                "parameters": [
                    {"type": "string", "description": "Generated file name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Invalid file name", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not mirrored", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/generate": {
            "post": {
                "description": "Synthesizes text with a catalog model and stores the result under /output.\nAn optional voice sample (wav, mp3, flac, m4a) enables voice cloning on\nmodels that support it. The sample is deleted once synthesis finishes.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["synthesis"],
                "summary": "Generate speech",
                "parameters": [
                    {"type": "string", "description": "Text to speak", "name": "text", "in": "formData", "required": true},
                    {"type": "string", "description": "Catalog model id", "name": "modelId", "in": "formData", "required": true},
                    {"type": "string", "description": "Output file name, .wav is appended when missing", "name": "outputFilename", "in": "formData", "required": true},
                    {"type": "file", "description": "Voice sample for cloning", "name": "speakerFile", "in": "formData"},
                    {"type": "string", "description": "Language code for multilingual models", "name": "language", "in": "formData"},
                    {"type": "string", "description": "Built-in speaker name", "name": "speaker", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.GenerateResponse"}},
                    "400": {"description": "Invalid input, unsupported sample format, incompatible language or missing voice", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Synthesis engine failure", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/models": {
            "get": {
                "description": "Returns category names in display order and the models of each category.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ModelsResponse"}}
                }
            }
        },
        "/speakers/{model}": {
            "get": {
                "description": "Loads the model in the engine and lists the voices it ships with.\nFailures are reported in the body with has_speakers=false.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List built-in speakers",
                "parameters": [
                    {"type": "string", "description": "Model id, slashes included", "name": "model", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SpeakersResponse"}}
                }
            }
        },
        "/test/{model}": {
            "get": {
                "description": "Synthesizes a fixed English sentence into a temporary file and reports its size.\nFailures are reported in the body with success=false.",
                "produces": ["application/json"],
                "tags": ["synthesis"],
                "summary": "Probe a model",
                "parameters": [
                    {"type": "string", "description": "Model id, slashes included", "name": "model", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.TestResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "alternatives": {"type": "array", "items": {"type": "string"}},
                "message": {"type": "string"},
                "success": {"type": "boolean", "example": false},
                "supported_languages": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.GenerateResponse": {
            "type": "object",
            "properties": {
                "filename": {"type": "string", "example": "out.wav"},
                "message": {"type": "string", "example": "audio generated: out.wav"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "http.ModelSummary": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "family": {"type": "string"},
                "gender": {"type": "string"},
                "id": {"type": "string"},
                "language": {"type": "string"},
                "name": {"type": "string"},
                "quality": {"type": "string"},
                "speakers": {"type": "boolean"},
                "voice_cloning": {"type": "boolean"}
            }
        },
        "http.ModelsResponse": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"type": "string"}},
                "models": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/http.ModelSummary"}}
                }
            }
        },
        "http.SpeakersResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "has_speakers": {"type": "boolean"},
                "model_name": {"type": "string"},
                "speakers": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.TestResponse": {
            "type": "object",
            "properties": {
                "file_size": {"type": "integer"},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
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
	Title:            "ttsgen API",
	Description:      "Web front-end for pretrained text-to-speech models with optional voice cloning.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
