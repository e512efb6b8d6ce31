package printing

// Print layouts target 80mm thermal printers, so the markup stays minimal
// and inline-styled.
const kotTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>KOT {{.OrderRef}}</title>
<style>
body { font-family: monospace; width: 280px; margin: 0; }
h1 { font-size: 14px; text-align: center; margin: 4px 0; }
.meta { font-size: 11px; margin-bottom: 6px; }
table { width: 100%; border-collapse: collapse; font-size: 12px; }
td.qty { width: 36px; vertical-align: top; }
.note { font-size: 10px; font-style: italic; }
.cancelled { text-decoration: line-through; }
hr { border: none; border-top: 1px dashed #000; }
</style>
</head>
<body>
<h1>KITCHEN ORDER</h1>
<div class="meta">
Order: {{.OrderRef}}<br>
{{if .TableNumber}}Table: {{.TableNumber}}<br>{{end}}
Printed: {{.PrintedAt.Format "02 Jan 2006 15:04"}}
</div>
<hr>
<table>
{{range .Items}}
<tr{{if .Cancelled}} class="cancelled"{{end}}>
<td class="qty">{{.Qty}}x</td>
<td>{{.ItemName}}{{if .Note}}<div class="note">{{.Note}}</div>{{end}}{{if .Attributes}}<div class="note">{{.Attributes}}</div>{{end}}</td>
</tr>
{{end}}
</table>
<hr>
</body>
</html>`

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt {{.OrderRef}}</title>
<style>
body { font-family: monospace; width: 280px; margin: 0; }
h1 { font-size: 14px; text-align: center; margin: 4px 0; }
.meta { font-size: 11px; margin-bottom: 6px; }
table { width: 100%; border-collapse: collapse; font-size: 12px; }
td.amount { text-align: right; white-space: nowrap; }
.total td { font-weight: bold; border-top: 1px solid #000; }
hr { border: none; border-top: 1px dashed #000; }
.footer { font-size: 10px; text-align: center; margin-top: 8px; }
</style>
</head>
<body>
<h1>{{.BranchName}}</h1>
<div class="meta">
Order: {{.OrderRef}}<br>
{{if .TableNumber}}Table: {{.TableNumber}}<br>{{end}}
{{if .CustomerName}}Customer: {{.CustomerName}}<br>{{end}}
Served by: {{.WaiterUser}}<br>
{{.PrintedAt.Format "02 Jan 2006 15:04"}}
</div>
<hr>
<table>
{{range .Lines}}
<tr>
<td>{{.Qty}}x {{.ItemName}}</td>
<td class="amount">{{.Amount}}</td>
</tr>
{{end}}
<tr class="total"><td>TOTAL</td><td class="amount">{{.Total}}</td></tr>
</table>
<hr>
<div class="footer">Thank you for your visit</div>
</body>
</html>`
