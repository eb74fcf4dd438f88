// Package docs registers the OpenAPI 2.0 description of the /api/v1 routes
// with swag, which gin-swagger serves under /swagger. Keep it in step with
// the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/invoices": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Retrieve a paginated list of the caller's invoices with optional filtering",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "List invoices",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Invoice status",
                        "name": "status",
                        "in": "query",
                        "enum": [
                            "pending",
                            "paid",
                            "overdue",
                            "cancelled"
                        ]
                    },
                    {
                        "type": "string",
                        "description": "Property ID",
                        "name": "property_id",
                        "in": "query",
                        "format": "uuid"
                    },
                    {
                        "type": "string",
                        "description": "Tenant ID",
                        "name": "tenant_id",
                        "in": "query",
                        "format": "uuid"
                    },
                    {
                        "type": "string",
                        "description": "Due on or after (YYYY-MM-DD)",
                        "name": "due_from",
                        "in": "query",
                        "format": "date"
                    },
                    {
                        "type": "string",
                        "description": "Due on or before (YYYY-MM-DD)",
                        "name": "due_to",
                        "in": "query",
                        "format": "date"
                    },
                    {
                        "type": "string",
                        "description": "Search term (number, description)",
                        "name": "search",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page number",
                        "name": "page",
                        "in": "query",
                        "default": 1
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "page_size",
                        "in": "query",
                        "default": 20,
                        "maximum": 100
                    },
                    {
                        "type": "string",
                        "description": "Order by field",
                        "name": "order_by",
                        "in": "query",
                        "enum": [
                            "created_at",
                            "due_date",
                            "number",
                            "amount"
                        ],
                        "default": "created_at"
                    },
                    {
                        "type": "string",
                        "description": "Order direction",
                        "name": "order_dir",
                        "in": "query",
                        "enum": [
                            "asc",
                            "desc"
                        ],
                        "default": "desc"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/appinvoicing.InvoiceResponse"
                                            }
                                        },
                                        "meta": {
                                            "$ref": "#/definitions/dto.Meta"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Create a pending invoice with the next INV-YYYY-NNNNN number. Line items must add up to the amount.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Create an invoice",
                "parameters": [
                    {
                        "description": "Invoice creation request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/appinvoicing.CreateInvoiceRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/appinvoicing.InvoiceResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/invoices/summary": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Totals per status for invoices issued in the window. Both bounds are optional and inclusive.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Invoice summary",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Issued on or after (YYYY-MM-DD)",
                        "name": "from",
                        "in": "query",
                        "format": "date"
                    },
                    {
                        "type": "string",
                        "description": "Issued on or before (YYYY-MM-DD)",
                        "name": "to",
                        "in": "query",
                        "format": "date"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/appinvoicing.InvoiceSummary"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/invoices/late-fees/preview": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Compute the fees a late-fee run would charge without saving anything. Body fields override the configured policy.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "late-fees"
                ],
                "summary": "Preview late fees",
                "parameters": [
                    {
                        "description": "Policy overrides",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/handler.LateFeePolicyRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/appinvoicing.LateFeePreview"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/invoices/late-fees/apply": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Move pending past-due invoices to overdue and charge the policy fee. Invoices already charged are skipped.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "late-fees"
                ],
                "summary": "Apply late fees",
                "parameters": [
                    {
                        "description": "Policy overrides",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/handler.LateFeePolicyRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/appinvoicing.LateFeeRunResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/invoices/batch-rent": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Create one rent invoice per lease active today",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Generate rent invoices",
                "parameters": [
                    {
                        "description": "Batch rent request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/appinvoicing.BatchRentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/appinvoicing.BatchRentResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/invoices/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Retrieve one of the caller's invoices",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Get invoice by ID",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/appinvoicing.InvoiceResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Replace the provided fields. Line items and notes are merged into the stored metadata; the amount can only change while pending.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Update an invoice",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Invoice update request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/appinvoicing.UpdateInvoiceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/appinvoicing.InvoiceResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/invoices/{id}/pay": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Settle a pending or overdue invoice today. The payment details body is optional.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Mark an invoice as paid",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Payment details",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/appinvoicing.MarkAsPaidRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/appinvoicing.InvoiceResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/invoices/{id}/cancel": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Cancel a pending or overdue invoice",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Cancel an invoice",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/appinvoicing.InvoiceResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/invoices/{id}/pdf": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Render the invoice as an A4 PDF document",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/pdf"
                ],
                "tags": [
                    "invoices"
                ],
                "summary": "Download invoice PDF",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Invoice ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Invoice PDF",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "501": {
                        "description": "Not Implemented",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/saft/validate": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Check the company header and period of an export. Always answers 200; the body says whether the export would be accepted.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "saft"
                ],
                "summary": "Validate SAF-T export",
                "parameters": [
                    {
                        "description": "Export period",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.SAFTExportRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/saft.ValidationResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/saft/export": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Build the SAF-T PT 1.04_01 audit file for the period and stream it as an XML attachment",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/xml"
                ],
                "tags": [
                    "saft"
                ],
                "summary": "Export SAF-T PT",
                "parameters": [
                    {
                        "description": "Export period",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.SAFTExportRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "SAF-T XML",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/analytics/dashboard": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "All seven dashboard metrics computed concurrently. A failing metric yields its empty default.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "analytics"
                ],
                "summary": "Dashboard analytics",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Revenue months",
                        "name": "revenue_months",
                        "in": "query",
                        "default": 12,
                        "maximum": 36
                    },
                    {
                        "type": "integer",
                        "description": "Occupancy trend months",
                        "name": "trend_months",
                        "in": "query",
                        "default": 6,
                        "maximum": 36
                    },
                    {
                        "type": "integer",
                        "description": "Lease expiration window in days",
                        "name": "expiration_window",
                        "in": "query",
                        "default": 90,
                        "maximum": 730
                    },
                    {
                        "type": "integer",
                        "description": "Recent activity count",
                        "name": "activity_limit",
                        "in": "query",
                        "default": 10,
                        "maximum": 100
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/report.DashboardAnalytics"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/analytics/kpis": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Occupancy, revenue, collection and maintenance KPIs",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "analytics"
                ],
                "summary": "Headline KPIs",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/report.KPIMetrics"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/analytics/revenue": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Paid receipts and expenses per calendar month, oldest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "analytics"
                ],
                "summary": "Revenue by month",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Months",
                        "name": "months",
                        "in": "query",
                        "default": 12,
                        "maximum": 36
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/report.RevenueByMonth"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/analytics/lease-expirations": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Active leases ending within the window, banded by risk",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "analytics"
                ],
                "summary": "Lease expirations",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Window in days",
                        "name": "days",
                        "in": "query",
                        "default": 90,
                        "maximum": 730
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/report.LeaseExpiration"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {},
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ValidationDetail"
                    }
                }
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "invoicing.LineItem": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "1000.00"
                },
                "unit_price": {
                    "type": "string",
                    "example": "1000.00"
                }
            }
        },
        "appinvoicing.LineItemRequest": {
            "type": "object",
            "properties": {
                "description": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "1000.00"
                },
                "unit_price": {
                    "type": "string",
                    "example": "1000.00"
                }
            },
            "required": [
                "description",
                "quantity",
                "unit_price"
            ]
        },
        "appinvoicing.CreateInvoiceRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "due_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "description": {
                    "type": "string",
                    "maxLength": 500
                },
                "property_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "tenant_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "owner_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "lease_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "line_items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/appinvoicing.LineItemRequest"
                    }
                },
                "notes": {
                    "type": "string",
                    "maxLength": 2000
                }
            },
            "required": [
                "amount",
                "due_date"
            ],
            "description": "Request body for creating an invoice"
        },
        "appinvoicing.UpdateInvoiceRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "due_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "description": {
                    "type": "string",
                    "maxLength": 500
                },
                "property_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "tenant_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "owner_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "line_items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/appinvoicing.LineItemRequest"
                    }
                },
                "notes": {
                    "type": "string",
                    "maxLength": 2000
                }
            },
            "description": "Request body for a partial invoice update"
        },
        "appinvoicing.MarkAsPaidRequest": {
            "type": "object",
            "properties": {
                "payment_method": {
                    "type": "string",
                    "maxLength": 50
                },
                "payment_reference": {
                    "type": "string",
                    "maxLength": 100
                }
            },
            "description": "Optional payment details recorded when an invoice is settled"
        },
        "appinvoicing.LateFeeResponse": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "days_overdue": {
                    "type": "integer"
                },
                "applied_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "grace_period_days": {
                    "type": "integer"
                },
                "percentage_rate": {
                    "type": "string",
                    "example": "1000.00"
                },
                "flat_fee": {
                    "type": "string",
                    "example": "1000.00"
                },
                "max_percentage": {
                    "type": "string",
                    "example": "1000.00"
                }
            }
        },
        "appinvoicing.InvoiceResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "number": {
                    "type": "string",
                    "example": "INV-2025-00001"
                },
                "description": {
                    "type": "string"
                },
                "amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "original_amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "currency": {
                    "type": "string",
                    "example": "EUR"
                },
                "due_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "paid_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "pending",
                        "paid",
                        "overdue",
                        "cancelled"
                    ]
                },
                "property_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "tenant_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "owner_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "lease_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "line_items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/invoicing.LineItem"
                    }
                },
                "notes": {
                    "type": "string"
                },
                "payment_method": {
                    "type": "string"
                },
                "payment_reference": {
                    "type": "string"
                },
                "late_fee": {
                    "$ref": "#/definitions/appinvoicing.LateFeeResponse"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "version": {
                    "type": "integer"
                }
            },
            "description": "Invoice information returned by the API"
        },
        "appinvoicing.LateFeePreview": {
            "type": "object",
            "properties": {
                "invoice_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "number": {
                    "type": "string"
                },
                "original_amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "late_fee": {
                    "type": "string",
                    "example": "1000.00"
                },
                "new_amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "days_overdue": {
                    "type": "integer"
                }
            },
            "description": "Late fee an invoice would receive"
        },
        "appinvoicing.LateFeeFailure": {
            "type": "object",
            "properties": {
                "invoice_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "number": {
                    "type": "string"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "appinvoicing.LateFeeRunResult": {
            "type": "object",
            "properties": {
                "applied": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/appinvoicing.InvoiceResponse"
                    }
                },
                "marked_overdue": {
                    "type": "integer"
                },
                "skipped": {
                    "type": "integer"
                },
                "failed": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/appinvoicing.LateFeeFailure"
                    }
                },
                "total_late_fees": {
                    "type": "string",
                    "example": "1000.00"
                }
            },
            "description": "Outcome of a late-fee run"
        },
        "appinvoicing.BatchRentRequest": {
            "type": "object",
            "properties": {
                "due_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "month": {
                    "type": "string",
                    "example": "2025-03",
                    "maxLength": 32
                }
            },
            "required": [
                "due_date",
                "month"
            ],
            "description": "Request body for a batch rent run"
        },
        "appinvoicing.BatchRentFailure": {
            "type": "object",
            "properties": {
                "lease_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "tenant_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "error": {
                    "type": "string"
                }
            }
        },
        "appinvoicing.BatchRentResult": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/appinvoicing.InvoiceResponse"
                    }
                },
                "failed": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/appinvoicing.BatchRentFailure"
                    }
                }
            },
            "description": "Invoices created and leases that failed in a batch rent run"
        },
        "appinvoicing.InvoiceSummary": {
            "type": "object",
            "properties": {
                "period_start": {
                    "type": "string",
                    "format": "date-time"
                },
                "period_end": {
                    "type": "string",
                    "format": "date-time"
                },
                "invoice_count": {
                    "type": "integer"
                },
                "total_invoiced": {
                    "type": "string",
                    "example": "1000.00"
                },
                "total_paid": {
                    "type": "string",
                    "example": "1000.00"
                },
                "total_pending": {
                    "type": "string",
                    "example": "1000.00"
                },
                "total_overdue": {
                    "type": "string",
                    "example": "1000.00"
                },
                "total_cancelled": {
                    "type": "string",
                    "example": "1000.00"
                },
                "total_late_fees": {
                    "type": "string",
                    "example": "1000.00"
                }
            },
            "description": "Invoice totals per status for an issue window"
        },
        "handler.LateFeePolicyRequest": {
            "type": "object",
            "properties": {
                "enabled": {
                    "type": "boolean"
                },
                "grace_period_days": {
                    "type": "integer",
                    "minimum": 0,
                    "maximum": 365
                },
                "percentage_rate": {
                    "type": "string",
                    "example": "1000.00"
                },
                "flat_fee": {
                    "type": "string",
                    "example": "1000.00"
                },
                "max_percentage": {
                    "type": "string",
                    "example": "1000.00"
                }
            },
            "description": "Late-fee policy overrides; empty fields keep the configured policy"
        },
        "handler.CompanyRequest": {
            "type": "object",
            "properties": {
                "tax_registration_number": {
                    "type": "string",
                    "example": "508332745"
                },
                "company_name": {
                    "type": "string"
                },
                "business_name": {
                    "type": "string"
                },
                "street": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "postal_code": {
                    "type": "string",
                    "example": "1100-053"
                },
                "country": {
                    "type": "string",
                    "example": "PT"
                },
                "email": {
                    "type": "string"
                },
                "telephone": {
                    "type": "string"
                }
            },
            "required": [
                "tax_registration_number",
                "company_name"
            ]
        },
        "handler.SAFTExportRequest": {
            "type": "object",
            "properties": {
                "fiscal_year": {
                    "type": "integer",
                    "minimum": 2000,
                    "maximum": 2100
                },
                "start_month": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 12
                },
                "end_month": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 12
                },
                "series_code": {
                    "type": "string"
                },
                "company": {
                    "$ref": "#/definitions/handler.CompanyRequest"
                }
            },
            "required": [
                "fiscal_year"
            ],
            "description": "Fiscal period and header overrides of a SAF-T export"
        },
        "saft.ValidationResult": {
            "type": "object",
            "properties": {
                "valid": {
                    "type": "boolean"
                },
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "report.KPIMetrics": {
            "type": "object",
            "properties": {
                "total_properties": {
                    "type": "integer"
                },
                "occupied_properties": {
                    "type": "integer"
                },
                "occupancy_rate": {
                    "type": "string",
                    "example": "1000.00"
                },
                "total_tenants": {
                    "type": "integer"
                },
                "active_leases": {
                    "type": "integer"
                },
                "monthly_revenue": {
                    "type": "string",
                    "example": "1000.00"
                },
                "total_revenue": {
                    "type": "string",
                    "example": "1000.00"
                },
                "total_expenses": {
                    "type": "string",
                    "example": "1000.00"
                },
                "net_income": {
                    "type": "string",
                    "example": "1000.00"
                },
                "collection_rate": {
                    "type": "string",
                    "example": "1000.00"
                },
                "outstanding_amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "open_maintenance_tickets": {
                    "type": "integer"
                }
            }
        },
        "report.RevenueByMonth": {
            "type": "object",
            "properties": {
                "month": {
                    "type": "string",
                    "example": "2025-03"
                },
                "revenue": {
                    "type": "string",
                    "example": "1000.00"
                },
                "expenses": {
                    "type": "string",
                    "example": "1000.00"
                },
                "net_income": {
                    "type": "string",
                    "example": "1000.00"
                }
            }
        },
        "report.PropertyPerformance": {
            "type": "object",
            "properties": {
                "property_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "property_name": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "revenue": {
                    "type": "string",
                    "example": "1000.00"
                },
                "expenses": {
                    "type": "string",
                    "example": "1000.00"
                },
                "net_income": {
                    "type": "string",
                    "example": "1000.00"
                },
                "collection_rate": {
                    "type": "string",
                    "example": "1000.00"
                },
                "maintenance_count": {
                    "type": "integer"
                }
            }
        },
        "report.LeaseExpiration": {
            "type": "object",
            "properties": {
                "lease_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "property_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "property_name": {
                    "type": "string"
                },
                "tenant_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "tenant_name": {
                    "type": "string"
                },
                "end_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "monthly_rent": {
                    "type": "string",
                    "example": "1000.00"
                },
                "days_until_expiration": {
                    "type": "integer"
                },
                "risk": {
                    "type": "string",
                    "enum": [
                        "expired",
                        "critical",
                        "warning",
                        "healthy"
                    ]
                }
            }
        },
        "report.MaintenanceStats": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "open": {
                    "type": "integer"
                },
                "in_progress": {
                    "type": "integer"
                },
                "resolved": {
                    "type": "integer"
                },
                "by_priority": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "total_cost": {
                    "type": "string",
                    "example": "1000.00"
                },
                "average_resolution_days": {
                    "type": "string",
                    "example": "1000.00"
                }
            }
        },
        "report.OccupancyTrendPoint": {
            "type": "object",
            "properties": {
                "month": {
                    "type": "string"
                },
                "occupied": {
                    "type": "integer"
                },
                "total": {
                    "type": "integer"
                },
                "occupancy_rate": {
                    "type": "string",
                    "example": "1000.00"
                }
            }
        },
        "report.RecentActivity": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string",
                    "enum": [
                        "payment",
                        "maintenance",
                        "lease",
                        "expense"
                    ]
                },
                "description": {
                    "type": "string"
                },
                "date": {
                    "type": "string",
                    "format": "date-time"
                },
                "amount": {
                    "type": "string",
                    "example": "1000.00"
                },
                "reference_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "report.DashboardAnalytics": {
            "type": "object",
            "properties": {
                "kpis": {
                    "$ref": "#/definitions/report.KPIMetrics"
                },
                "revenue_by_month": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/report.RevenueByMonth"
                    }
                },
                "property_performance": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/report.PropertyPerformance"
                    }
                },
                "lease_expirations": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/report.LeaseExpiration"
                    }
                },
                "maintenance_stats": {
                    "$ref": "#/definitions/report.MaintenanceStats"
                },
                "occupancy_trend": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/report.OccupancyTrendPoint"
                    }
                },
                "recent_activities": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/report.RecentActivity"
                    }
                },
                "generated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
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
	Title:            "Proman API",
	Description:      "Property management API: invoices, late fees, SAF-T PT export and portfolio analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
