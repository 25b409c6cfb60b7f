// Package templates renders the reminder email body.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

const (
	defaultSiteTitle = "RajCreation Live"
	defaultFooter    = "You asked to be reminded about this broadcast."
	accentColor      = "#e11d48"
)

// Reminder is everything shown in one event reminder.
type Reminder struct {
	SiteTitle   string
	Title       string
	Date        string
	TimeRange   string
	Timezone    string
	Location    string
	Description string
	WatchURL    string
	Footer      string
}

var reminderTemplate = template.Must(template.New("reminder").Parse(`{{define "button"}}
<table role="presentation" border="0" cellpadding="0" cellspacing="0" style="width: auto; padding-bottom: 16px;">
  <tr>
    <td style="border-radius: 6px; text-align: center; background-color: {{.Accent}};" align="center">
      <a href="{{.WatchURL}}" target="_blank" style="display: inline-block; font-size: 16px; font-weight: bold; padding: 12px 24px; text-decoration: none; color: #ffffff;">Watch live</a>
    </td>
  </tr>
</table>{{end}}<!doctype html>
<html lang="en">
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
  <title>{{.SiteTitle}}</title>
</head>
<body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.4; background-color: #faf7f2; margin: 0; padding: 24px 0;">
  <span style="display: none; max-height: 0; overflow: hidden;">Reminder: {{.Title}} on {{.Date}}</span>
  <div style="max-width: 560px; margin: 0 auto; background: #ffffff; border-top: 4px solid {{.Accent}}; border-radius: 12px; padding: 24px;">
    <h2 style="font-size: 22px; margin: 0 0 12px 0;">{{.Title}}</h2>
    <table role="presentation" border="0" cellpadding="4" cellspacing="0" style="margin-bottom: 16px;">
      <tr><td style="color: #6b7280;">Date</td><td>{{.Date}}</td></tr>
      <tr><td style="color: #6b7280;">Time</td><td>{{.TimeRange}} {{.Timezone}}</td></tr>
      <tr><td style="color: #6b7280;">Where</td><td>{{.Location}}</td></tr>
    </table>
    {{with .Description}}<p style="margin: 0 0 16px 0;">{{.}}</p>{{end}}
    <p style="margin: 0 0 16px 0;">The attached calendar file adds this broadcast to your calendar.</p>
    {{if .WatchURL}}{{template "button" .}}{{end}}
  </div>
  <p style="text-align: center; color: #9a9ea6; font-size: 14px;">{{.Footer}}<br>{{.SiteTitle}}</p>
</body>
</html>`))

type reminderView struct {
	Reminder
	Accent string
}

// Render produces the HTML body. A watch link that is not http or https
// is left out rather than rendered.
func Render(r Reminder) (string, error) {
	if r.SiteTitle == "" {
		r.SiteTitle = defaultSiteTitle
	}
	if r.Footer == "" {
		r.Footer = defaultFooter
	}
	r.WatchURL = webLink(r.WatchURL)

	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, reminderView{Reminder: r, Accent: accentColor}); err != nil {
		return "", fmt.Errorf("render reminder: %w", err)
	}
	return buf.String(), nil
}

func webLink(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return ""
	}
	return u.String()
}
