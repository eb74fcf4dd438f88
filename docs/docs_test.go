package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocIsRegistered(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Swagger  string                                `json:"swagger"`
		BasePath string                                `json:"basePath"`
		Info     struct{ Title, Version string }       `json:"info"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
		Defs     map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), "rendered template must be valid JSON")

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Equal(t, "Proman API", doc.Info.Title)

	routes := map[string][]string{
		"/invoices":                    {"get", "post"},
		"/invoices/summary":            {"get"},
		"/invoices/late-fees/preview":  {"post"},
		"/invoices/late-fees/apply":    {"post"},
		"/invoices/batch-rent":         {"post"},
		"/invoices/{id}":               {"get", "put"},
		"/invoices/{id}/pay":           {"post"},
		"/invoices/{id}/cancel":        {"post"},
		"/invoices/{id}/pdf":           {"get"},
		"/saft/validate":               {"post"},
		"/saft/export":                 {"post"},
		"/analytics/dashboard":         {"get"},
		"/analytics/kpis":              {"get"},
		"/analytics/revenue":           {"get"},
		"/analytics/lease-expirations": {"get"},
	}
	assert.Len(t, doc.Paths, len(routes))
	for path, methods := range routes {
		require.Contains(t, doc.Paths, path)
		for _, m := range methods {
			assert.Contains(t, doc.Paths[path], m, "%s %s", m, path)
		}
	}
	for _, def := range []string{"dto.Response", "appinvoicing.InvoiceResponse", "appinvoicing.InvoiceSummary", "report.DashboardAnalytics"} {
		assert.Contains(t, doc.Defs, def)
	}
}

func TestSwaggerDoc_SummaryBoundsAreOptional(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]struct {
			Parameters []struct {
				Name     string `json:"name"`
				Required bool   `json:"required"`
			} `json:"parameters"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	params := doc.Paths["/invoices/summary"]["get"].Parameters
	require.Len(t, params, 2)
	for _, p := range params {
		assert.False(t, p.Required, p.Name)
	}
}
