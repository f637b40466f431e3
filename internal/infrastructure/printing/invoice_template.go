package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLine is one entry row on the rendered invoice
type InvoiceLine struct {
	Date  string
	Note  string
	Role  string
	Hours decimal.Decimal
}

// InvoiceRoleTotal is the per-role subtotal block
type InvoiceRoleTotal struct {
	Role   string
	Rate   decimal.Decimal
	Hours  decimal.Decimal
	Amount decimal.Decimal
}

// InvoiceData is the full data set bound to the invoice template
type InvoiceData struct {
	Number        string
	IssuedOn      string
	BillTo        string
	Notes         string
	WorkspaceName string
	TabName       string
	AssigneeName  string
	Lines         []InvoiceLine
	RoleTotals    []InvoiceRoleTotal
	TotalHours    decimal.Decimal
	TotalAmount   decimal.Decimal
	GeneratedAt   time.Time
}

// InvoiceTemplate renders invoice data to HTML ready for PDF printing
type InvoiceTemplate struct {
	tmpl *template.Template
}

// NewInvoiceTemplate parses the built-in invoice template
func NewInvoiceTemplate() (*InvoiceTemplate, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"formatMoney": formatMoney,
		"formatHours": formatHours,
		"formatDate":  formatDate,
	}).Parse(invoiceTemplateHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	return &InvoiceTemplate{tmpl: tmpl}, nil
}

// Render binds the invoice data and returns the HTML document
func (t *InvoiceTemplate) Render(data *InvoiceData) (string, error) {
	if data == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "invoice data is nil", nil)
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "invoice template execution failed", err)
	}
	return buf.String(), nil
}

// formatMoney renders a decimal amount with two fraction digits
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatHours renders hours without trailing zeros (7.50 -> 7.5, 8.00 -> 8)
func formatHours(d decimal.Decimal) string {
	return d.String()
}

// formatDate re-renders a YYYY-MM-DD date in a readable form,
// passing through values that do not parse
func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}

const invoiceTemplateHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1a1a2e; font-size: 13px; margin: 0; }
  .header { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 32px; }
  .header h1 { font-size: 26px; margin: 0; letter-spacing: 1px; }
  .meta { text-align: right; color: #555; }
  .meta div { margin-bottom: 4px; }
  .billto { margin-bottom: 24px; }
  .billto .label { font-size: 11px; text-transform: uppercase; color: #888; margin-bottom: 4px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
  th { text-align: left; font-size: 11px; text-transform: uppercase; color: #888; border-bottom: 2px solid #e0e0e8; padding: 6px 8px; }
  td { border-bottom: 1px solid #eee; padding: 6px 8px; }
  td.num, th.num { text-align: right; }
  .totals { width: 300px; margin-left: auto; }
  .totals td { border: none; padding: 4px 8px; }
  .totals .grand td { border-top: 2px solid #1a1a2e; font-weight: bold; font-size: 15px; }
  .notes { margin-top: 32px; color: #555; white-space: pre-wrap; }
  .footer { margin-top: 48px; font-size: 11px; color: #aaa; }
</style>
</head>
<body>
  <div class="header">
    <div>
      <h1>INVOICE</h1>
      {{if .Number}}<div>{{.Number}}</div>{{end}}
    </div>
    <div class="meta">
      <div>{{.WorkspaceName}}</div>
      <div>{{.TabName}} &mdash; {{.AssigneeName}}</div>
      {{if .IssuedOn}}<div>Issued {{formatDate .IssuedOn}}</div>{{end}}
    </div>
  </div>

  {{if .BillTo}}
  <div class="billto">
    <div class="label">Bill to</div>
    <div>{{.BillTo}}</div>
  </div>
  {{end}}

  <table>
    <thead>
      <tr><th>Date</th><th>Description</th><th>Role</th><th class="num">Hours</th></tr>
    </thead>
    <tbody>
      {{range .Lines}}
      <tr>
        <td>{{formatDate .Date}}</td>
        <td>{{.Note}}</td>
        <td>{{.Role}}</td>
        <td class="num">{{formatHours .Hours}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <table class="totals">
    {{range .RoleTotals}}
    <tr>
      <td>{{.Role}} ({{formatHours .Hours}}h &times; {{formatMoney .Rate}})</td>
      <td class="num">{{formatMoney .Amount}}</td>
    </tr>
    {{end}}
    <tr class="grand">
      <td>Total ({{formatHours .TotalHours}}h)</td>
      <td class="num">{{formatMoney .TotalAmount}}</td>
    </tr>
  </table>

  {{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}

  <div class="footer">Generated {{.GeneratedAt.Format "Jan 2, 2006 15:04"}}</div>
</body>
</html>`
