// Package docs registers the OpenAPI document served at /api/docs/doc.json
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
  "openapi": "3.0.3",
  "info": {
    "title": "{{.Title}}",
    "description": "{{.Description}}",
    "version": "{{.Version}}"
  },
  "paths": {
    "/route": {
      "post": {
        "tags": ["route"],
        "summary": "Route a question",
        "description": "Classifies the question and returns a sql, rag or optimize decision.",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/RouteRequest"}}}
        },
        "responses": {
          "200": {
            "description": "Decision",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/DecisionEnvelope"}}}
          },
          "503": {
            "description": "Circuit open or llm not configured",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}
          }
        }
      }
    },
    "/route/explain": {
      "post": {
        "tags": ["route"],
        "summary": "Explain a routing decision",
        "description": "Returns ranked intent candidates, extracted parameters and the router trace without calling the llm.",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/RouteRequest"}}}
        },
        "responses": {"200": {"description": "Explanation"}}
      }
    },
    "/route/intents": {
      "get": {
        "tags": ["route"],
        "summary": "List intents",
        "responses": {"200": {"description": "Intent catalog"}}
      }
    },
    "/route/query": {
      "post": {
        "tags": ["route"],
        "summary": "Route and execute",
        "description": "Routes the question and runs sql decisions read-only against the warehouse.",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/RouteRequest"}}}
        },
        "responses": {
          "200": {"description": "Decision with result rows"},
          "503": {
            "description": "Execution disabled or warehouse unavailable",
            "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}
          }
        }
      }
    },
    "/stats/decisions": {
      "post": {
        "tags": ["stats"],
        "summary": "Audited decisions by day, task and source",
        "responses": {
          "200": {"description": "Buckets"},
          "503": {"description": "Decision audit not configured"}
        }
      }
    },
    "/stats/intents": {
      "post": {
        "tags": ["stats"],
        "summary": "Busiest intents and their model share",
        "responses": {
          "200": {"description": "Intents"},
          "503": {"description": "Decision audit not configured"}
        }
      }
    },
    "/samples/decisions": {
      "post": {
        "tags": ["samples"],
        "summary": "Recent audited decisions for review",
        "responses": {
          "200": {"description": "Decisions, newest first"},
          "503": {"description": "Decision audit not configured"}
        }
      }
    },
    "/meta/health": {
      "get": {"tags": ["meta"], "summary": "Liveness", "responses": {"200": {"description": "ok"}}}
    },
    "/meta/ready": {
      "get": {"tags": ["meta"], "summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "not ready"}}}
    },
    "/meta/version": {
      "get": {"tags": ["meta"], "summary": "Build version", "responses": {"200": {"description": "version"}}}
    },
    "/meta/breakers": {
      "get": {"tags": ["meta"], "summary": "Circuit breaker snapshots", "responses": {"200": {"description": "breakers"}}}
    }
  },
  "components": {
    "schemas": {
      "RouteRequest": {
        "type": "object",
        "required": ["question"],
        "properties": {
          "question": {"type": "string", "example": "Compare BB-001 and TIP-45 between April 2024 and June 2024"},
          "parameters": {"type": "object", "additionalProperties": true},
          "settings": {
            "type": "object",
            "properties": {"llm_api_key": {"type": "string"}}
          },
          "history": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {"role": {"type": "string"}, "content": {"type": "string"}}
            }
          }
        }
      },
      "Decision": {
        "type": "object",
        "properties": {
          "decision_id": {"type": "string", "format": "uuid"},
          "task": {"type": "string", "enum": ["sql", "rag", "optimize"]},
          "confidence": {"type": "number"},
          "raw_confidence": {"type": "number"},
          "reason": {"type": "string"},
          "route_source": {"type": "string", "enum": ["deterministic", "llm"]},
          "intent": {"type": "string"},
          "rule": {"type": "string"},
          "template_used": {"type": "string"},
          "sql": {"type": "string"},
          "params": {"type": "object", "additionalProperties": true},
          "latency_ms": {"type": "integer"}
        }
      },
      "DecisionEnvelope": {
        "type": "object",
        "properties": {
          "status_code": {"type": "integer"},
          "status": {"type": "string"},
          "request_id": {"type": "string"},
          "data": {"$ref": "#/components/schemas/Decision"}
        }
      }
    }
  }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "opsroute API",
	Description:      "Query understanding and routing for mine operations questions",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
