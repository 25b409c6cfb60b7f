// Package templates renders the public pages around the stage
package templates

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/rajcreationz/livesite/internal/application/state"
	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	"github.com/rajcreationz/livesite/pkg/config"
)

// Page names accepted by Render.
const (
	PageHome     = "home"
	PageVideos   = "videos"
	PagePhotos   = "photos"
	PageSchedule = "schedule"
	PageLogin    = "login"
)

// ScheduleFilters are the display filter tabs, in order.
var ScheduleFilters = []schedule.DisplayFilter{
	schedule.FilterAll, schedule.FilterUpcoming, schedule.FilterPast, schedule.FilterRecurring,
}

// PageData is everything a page template may read.
type PageData struct {
	Site   config.SiteConfig
	Title  string
	Active string
	Admin  bool

	Stage  template.HTML
	Status state.Status

	Videos []media.Video
	Photos []media.Photo
	Events []media.Event

	Schedule []schedule.Event
	Filter   schedule.DisplayFilter
	Filters  []schedule.DisplayFilter
	Month    schedule.Month

	Error string
}

var funcs = template.FuncMap{
	"time12": schedule.Format12h,
	"badge":  func(s schedule.Status) string { return s.Badge() },
	"day": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return fmt.Sprint(t.Day())
	},
	"monthTitle": func(m schedule.Month) string {
		return fmt.Sprintf("%s %d", m.Month, m.Year)
	},
	"active": func(current, name any) string {
		if fmt.Sprint(current) == fmt.Sprint(name) {
			return "active"
		}
		return ""
	},
}

const loginOverlay = `<div class="admin-overlay" id="adminLoginOverlay" hidden>` +
	`<form class="admin-login" id="adminLoginForm" method="post" action="/api/v1/admin/login">` +
	`<h2>Admin Login</h2>` +
	`<label>Username<input name="username" autocomplete="username" required></label>` +
	`<label>Password<input name="password" type="password" autocomplete="current-password" required></label>` +
	`<p class="form-error" id="adminLoginError" role="alert">{{.Error}}</p>` +
	`<button type="submit">Log in</button> <button type="button" data-action="close-login">Cancel</button>` +
	`</form></div>`

// clientScript wires the stage to the status socket and handles the
// click-to-play overlay, the #admin hash hook, reminder forms and page errors.
const clientScript = `(function(){` +
	`var offline=document.getElementById("offlineState");` +
	`function setOffline(v){if(!offline)return;if(document.querySelector(".live-video-thumbnail"))v=false;` +
	`offline.classList.toggle("active",v);offline.style.display=v?"flex":"none";offline.style.visibility=v?"visible":"hidden";}` +
	`function connect(){var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var ws=new WebSocket(p+location.host+"/api/v1/stream/ws");` +
	`ws.onmessage=function(e){try{var s=JSON.parse(e.data);setOffline(s.offlineVisible);}catch(_){}};` +
	`ws.onclose=function(){setTimeout(connect,5000);};}` +
	`if(document.body.dataset.liveStatus==="true"&&document.getElementById("videoWrapper"))connect();` +
	`document.addEventListener("click",function(e){` +
	`var t=e.target.closest("[data-action]");if(!t)return;` +
	`if(t.dataset.action==="play-live"){var th=document.querySelector(".live-video-thumbnail");if(th)th.remove();}` +
	`if(t.dataset.action==="close-login"){document.getElementById("adminLoginOverlay").hidden=true;}});` +
	`function openLogin(){var o=document.getElementById("adminLoginOverlay");if(o)o.hidden=false;}` +
	`function checkHash(){if(location.hash==="#admin"||location.hash==="#admin-login")setTimeout(openLogin,300);}` +
	`window.addEventListener("hashchange",checkHash);checkHash();` +
	`var form=document.getElementById("adminLoginForm");` +
	`if(form)form.addEventListener("submit",function(e){e.preventDefault();` +
	`var err=document.getElementById("adminLoginError");` +
	`fetch(form.action,{method:"POST",headers:{"Content-Type":"application/json"},credentials:"same-origin",` +
	`body:JSON.stringify({username:form.username.value,password:form.password.value})})` +
	`.then(function(r){return r.json();}).then(function(d){if(d.success){location.hash="";location.reload();}` +
	`else{form.password.value="";err.textContent=d.error;}})` +
	`.catch(function(){form.password.value="";err.textContent="Login failed. Please try again.";});});` +
	`document.querySelectorAll(".reminder-form").forEach(function(f){f.addEventListener("submit",function(e){e.preventDefault();` +
	`var note=f.querySelector(".form-note");fetch(f.action,{method:"POST",headers:{"Content-Type":"application/json"},` +
	`body:JSON.stringify({email:f.email.value})}).then(function(r){return r.json();})` +
	`.then(function(d){note.textContent=d.success?d.data.message:d.error;})` +
	`.catch(function(){note.textContent="Could not send the reminder. Please try again.";});});});` +
	`window.addEventListener("error",function(e){try{navigator.sendBeacon("/api/v1/client-logs",` +
	`JSON.stringify({level:"error",message:String(e.message),source:String(e.filename||"")}));}catch(_){}});` +
	`})();`

var pages = template.Must(template.New("pages").Funcs(funcs).Parse(
	`{{define "head"}}<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
		`<meta name="viewport" content="width=device-width, initial-scale=1">` +
		`<title>{{if .Title}}{{.Title}} | {{end}}{{.Site.Site.Title}}</title>` +
		`<meta name="description" content="{{.Site.Site.Description}}">` +
		`<link rel="stylesheet" href="/static/site.css"></head>` +
		`<body data-live-status="{{.Site.Features.EnableNotifications}}">` +
		`<nav class="site-nav"><a class="brand" href="/">{{.Site.Site.Title}}</a>` +
		`<a class="{{active .Active "home"}}" href="/">Live</a>` +
		`<a class="{{active .Active "videos"}}" href="/videos">Videos</a>` +
		`<a class="{{active .Active "photos"}}" href="/photos">Photos</a>` +
		`<a class="{{active .Active "schedule"}}" href="/schedule">Schedule</a></nav><main>{{end}}` +

		`{{define "foot"}}</main>` + loginOverlay +
		`<footer>{{range .Site.Social}}<a href="{{.URL}}" rel="noopener">{{.Name}}</a> {{end}}` +
		`<p>{{.Site.Site.Tagline}}</p></footer>` +
		`<script>` + clientScript + `</script></body></html>{{end}}` +

		`{{define "home"}}{{template "head" .}}` +
		`<section class="live-section"><h1>{{.Site.Site.Title}}</h1><p class="tagline">{{.Site.Site.Description}}</p>` +
		`<div class="stage" data-state="{{.Status.State}}">{{.Stage}}</div></section>` +
		`{{if .Events}}<section class="events"><h2>Events</h2><div class="grid">{{range .Events}}` +
		`<article class="event-card">{{if .ThumbnailURL}}<img src="{{.ThumbnailURL}}" alt="{{.Title}}" loading="lazy">{{end}}` +
		`<h3>{{.Title}}{{if .IsLive}} <span class="live-badge">● LIVE</span>{{end}}</h3>` +
		`<p>{{.Date}} {{.Time}}</p><p>{{.Description}}</p></article>{{end}}</div></section>{{end}}` +
		`{{template "foot" .}}{{end}}` +

		`{{define "videos"}}{{template "head" .}}<section><h1>Recorded Videos</h1><div class="grid">` +
		`{{range .Videos}}<article class="video-card">{{if .ThumbnailURL}}<img src="{{.ThumbnailURL}}" alt="{{.Title}}" loading="lazy">{{end}}` +
		`<h3>{{.Title}}</h3><p>{{.Date}}{{if .Duration}} · {{.Duration}}{{end}}{{if .Views}} · {{.Views}} views{{end}}</p>` +
		`{{if .EmbedLink}}<a href="{{.EmbedLink}}" target="_blank" rel="noopener">Watch</a>{{end}}</article>` +
		`{{else}}<p class="empty">No videos yet.</p>{{end}}</div></section>{{template "foot" .}}{{end}}` +

		`{{define "photos"}}{{template "head" .}}<section><h1>Photos</h1><div class="grid">` +
		`{{range .Photos}}<figure><img src="{{.URL}}" alt="{{.Description}}" loading="lazy">` +
		`{{if .Description}}<figcaption>{{.Description}}</figcaption>{{end}}</figure>` +
		`{{else}}<p class="empty">No photos yet.</p>{{end}}</div></section>{{template "foot" .}}{{end}}` +

		`{{define "schedule"}}{{template "head" .}}<section><h1>Schedule</h1>` +
		`<div class="filters">{{range .Filters}}<a class="{{active $.Filter .}}" href="/schedule?filter={{.}}">{{.}}</a>{{end}}</div>` +
		`<ul class="schedule-list">{{range .Schedule}}<li class="schedule-item status-{{.Status}}">` +
		`<span class="badge">{{badge .Status}}</span><h3>{{.Title}}</h3>` +
		`<p>{{.Date}} · {{time12 .StartTime}} - {{time12 .EndTime}} {{.Timezone}}</p>` +
		`{{if .Description}}<p>{{.Description}}</p>{{end}}` +
		`<a href="/schedule/{{.ID}}/ics">Add to calendar</a>` +
		`{{if and $.Site.Features.EnableReminders (ne .Status "past") (ne .Status "cancelled")}}` +
		`<form class="reminder-form" method="post" action="/api/v1/schedule/{{.ID}}/reminder">` +
		`<input type="email" name="email" placeholder="you@example.com" required>` +
		`<button type="submit">Remind me</button><span class="form-note" role="status"></span></form>{{end}}</li>` +
		`{{else}}<li class="empty">No events scheduled.</li>{{end}}</ul>` +
		`<h2>{{monthTitle .Month}}</h2><table class="calendar"><tr><th>Sun</th><th>Mon</th><th>Tue</th><th>Wed</th><th>Thu</th><th>Fri</th><th>Sat</th></tr>` +
		`{{range .Month.Weeks}}<tr>{{range .}}<td>{{day .Date}}{{range .Events}}<div class="cal-event">{{.Title}}</div>{{end}}</td>{{end}}</tr>{{end}}` +
		`</table></section>{{template "foot" .}}{{end}}` +

		`{{define "login"}}{{template "head" .}}<section class="login-page"><p>Admin access</p>` +
		`<script>location.hash="#admin";</script></section>{{template "foot" .}}{{end}}`,
))

// Render writes the named page.
func Render(w io.Writer, name string, data PageData) error {
	if data.Filters == nil {
		data.Filters = ScheduleFilters
	}
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s page: %w", name, err)
	}
	return nil
}
