// Email templates.
//
// Two bodies are rendered per lead: the operator notification and the
// sender acknowledgment. html/template escapes every interpolated field, so
// submitted text cannot inject markup into the emails.
package mailer

import (
	"html/template"
	"strconv"
	"strings"
)

// LeadEmailData feeds the operator-notification template.
type LeadEmailData struct {
	Name           string
	Email          string
	Message        string
	BudgetDisplay  string
	ServiceDisplay string
	Timestamp      string
}

// AckEmailData feeds the sender-acknowledgment template.
type AckEmailData struct {
	Name string
}

var leadTmpl = template.Must(template.New("lead").Parse(`<!DOCTYPE html>
<html lang="pl">
<body style="margin:0;padding:0;background-color:#050505;font-family:'Courier New',Courier,monospace;color:#ffffff;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color:#050505;">
    <tr><td align="center" style="padding:40px 10px;">
      <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background-color:#0f0f0f;border:1px solid #262626;max-width:600px;width:100%;">
        <tr><td style="padding:30px 40px;border-bottom:1px solid #262626;">
          <span style="color:#ff1f1f;font-size:11px;letter-spacing:2px;text-transform:uppercase;">&#9679; System Online</span>
          <span style="color:#666666;font-size:11px;float:right;">{{.Timestamp}}</span>
        </td></tr>
        <tr><td style="padding:30px 40px;">
          <h1 style="margin:0 0 20px;color:#ffffff;font-size:20px;">Nowy sygna&#322;: {{.Name}}</h1>
          <p style="margin:0 0 8px;color:#999999;font-size:13px;">E-mail: <a href="mailto:{{.Email}}" style="color:#ff1f1f;">{{.Email}}</a></p>
          <p style="margin:0 0 8px;color:#999999;font-size:13px;">Us&#322;uga: {{.ServiceDisplay}}</p>
          <p style="margin:0 0 20px;color:#999999;font-size:13px;">Bud&#380;et: {{.BudgetDisplay}}</p>
          <div style="padding:16px;background-color:#050505;border-left:2px solid #ff1f1f;color:#dddddd;font-size:14px;white-space:pre-wrap;">{{.Message}}</div>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

var ackTmpl = template.Must(template.New("ack").Parse(`<!DOCTYPE html>
<html lang="pl">
<body style="margin:0;padding:0;background-color:#050505;font-family:'Courier New',Courier,monospace;color:#ffffff;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color:#050505;">
    <tr><td align="center" style="padding:40px 10px;">
      <table role="presentation" width="600" cellspacing="0" cellpadding="0" style="background-color:#0f0f0f;border:1px solid #262626;max-width:600px;width:100%;">
        <tr><td style="padding:30px 40px;">
          <span style="color:#ff1f1f;font-size:11px;letter-spacing:2px;text-transform:uppercase;">&#9679; Sygna&#322; odebrany</span>
          <h1 style="margin:20px 0;color:#ffffff;font-size:20px;">Cze&#347;&#263; {{.Name}},</h1>
          <p style="margin:0 0 12px;color:#dddddd;font-size:14px;line-height:1.6;">Twoja wiadomo&#347;&#263; dotar&#322;a. Odezw&#281; si&#281; najszybciej jak to mo&#380;liwe, zwykle w ci&#261;gu 24 godzin.</p>
          <p style="margin:0;color:#666666;font-size:12px;">To jest automatyczne potwierdzenie &#8212; nie odpowiadaj na tego maila.</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

// RenderLeadEmail produces the operator-notification HTML body.
func RenderLeadEmail(d LeadEmailData) (string, error) {
	var b strings.Builder
	if err := leadTmpl.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderAckEmail produces the sender-acknowledgment HTML body.
func RenderAckEmail(d AckEmailData) (string, error) {
	var b strings.Builder
	if err := ackTmpl.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}

// FormatBudget renders the submitted budget for display. Zero or absent
// means the partnership option; values at the slider cap render open-ended.
func FormatBudget(budget int) string {
	if budget <= 0 {
		return "Partnerstwo / Win-Win"
	}
	if budget >= 15000 {
		return "15 000+ PLN"
	}
	return groupThousands(budget) + " PLN"
}

// groupThousands formats n with spaces as thousand separators (pl-PL style).
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
