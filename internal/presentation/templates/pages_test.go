package templates

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	"github.com/rajcreationz/livesite/pkg/config"
)

func siteData() PageData {
	site := config.DefaultSiteConfig()
	site.Social = []config.SocialLink{{Name: "YouTube", URL: "https://youtube.example/channel"}}
	return PageData{Site: site}
}

func render(t *testing.T, name string, data PageData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, name, data))
	return buf.String()
}

func TestRender_HomeEmbedsStageUnescaped(t *testing.T) {
	data := siteData()
	data.Active = PageHome
	data.Stage = `<div class="video-wrapper" id="videoWrapper"></div>`
	data.Events = []media.Event{{Title: "Diwali Special", IsLive: true}}

	out := render(t, PageHome, data)
	assert.Contains(t, out, `<div class="video-wrapper" id="videoWrapper"></div>`)
	assert.Contains(t, out, "Diwali Special")
	assert.Contains(t, out, "● LIVE")
	assert.Contains(t, out, `href="https://youtube.example/channel"`)
	assert.Contains(t, out, `class="active" href="/"`)
	assert.Contains(t, out, `id="adminLoginOverlay"`)
}

func TestRender_EscapesUserText(t *testing.T) {
	data := siteData()
	data.Photos = []media.Photo{{URL: "https://cdn.example/a.png", Description: `<script>alert(1)</script>`}}

	out := render(t, PagePhotos, data)
	assert.NotContains(t, out, `<script>alert(1)</script>`)
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRender_EmptyListsShowPlaceholders(t *testing.T) {
	assert.Contains(t, render(t, PageVideos, siteData()), "No videos yet.")
	assert.Contains(t, render(t, PagePhotos, siteData()), "No photos yet.")
}

func TestRender_Schedule(t *testing.T) {
	events := []schedule.Event{
		{ID: "a1", Title: "Morning Aarti", Date: "2024-03-15", StartTime: "18:00", EndTime: "19:30", Timezone: schedule.DefaultTimezone, Status: schedule.StatusUpcoming},
		{ID: "b2", Title: "Old Show", Date: "2024-03-01", StartTime: "09:00", EndTime: "10:00", Status: schedule.StatusPast},
	}
	data := siteData()
	data.Site.Features.EnableReminders = true
	data.Filter = schedule.FilterAll
	data.Schedule = events
	data.Month = schedule.BuildMonth(2024, time.March, events)

	out := render(t, PageSchedule, data)
	assert.Contains(t, out, "6:00 PM")
	assert.Contains(t, out, `href="/schedule/a1/ics"`)
	assert.Contains(t, out, `action="/api/v1/schedule/a1/reminder"`)
	assert.NotContains(t, out, `action="/api/v1/schedule/b2/reminder"`)
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, `href="/schedule?filter=recurring"`)
	assert.Contains(t, out, `class="active" href="/schedule?filter=all"`)

	data.Site.Features.EnableReminders = false
	assert.NotContains(t, render(t, PageSchedule, data), `class="reminder-form"`)
}

func TestRender_NotificationsFlag(t *testing.T) {
	data := siteData()
	data.Site.Features.EnableNotifications = false
	assert.Contains(t, render(t, PageHome, data), `data-live-status="false"`)
}

func TestRender_UnknownPage(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, "nope", siteData()))
}

func TestRender_FailedLoginClearsPassword(t *testing.T) {
	out := render(t, PageLogin, siteData())
	assert.Equal(t, 2, strings.Count(out, `form.password.value="";`), "both the rejected and the network failure paths clear the field")
}
