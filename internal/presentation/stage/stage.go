// Package stage holds the live and recorded video regions as an HTML node
// tree and applies resolved settings to it. A Stage is not safe for
// concurrent use; callers serialize access.
package stage

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Region and marker identifiers shared with the page templates and scripts.
const (
	VideoWrapperID         = "videoWrapper"
	RecordedVideoWrapperID = "recordedVideoWrapper"
	OfflineStateID         = "offlineState"
	RecordedOfflineStateID = "recordedOfflineState"

	LiveEmbedClass     = "live-stream-embed-container"
	RecordedEmbedClass = "recorded-videos-embed-container"
	ThumbnailClass     = "live-video-thumbnail"
	LiveBadgeClass     = "live-badge-thumbnail"
	PlayOverlayClass   = "thumbnail-play-overlay"
	PlayButtonClass    = "thumbnail-play-button"
	OfflineClass       = "offline-state"
	LoadingClass       = "stream-loading"
	ActiveClass        = "active"
)

// ErrRegionMissing means the stage markup lacks a required region.
var ErrRegionMissing = errors.New("stage region not found")

// DefaultMarkup is the initial state of both regions: loading and offline
// indicators visible, no embeds, no thumbnail.
const DefaultMarkup = `<div class="video-wrapper" id="videoWrapper">` +
	`<div class="stream-loading active" id="streamLoading"><div class="spinner"></div><p>Connecting to live stream...</p></div>` +
	`<div class="offline-state active" id="offlineState"><div class="offline-icon">📡</div><h3>Stream Offline</h3><p>The live stream is currently offline. Check the schedule for upcoming broadcasts.</p></div>` +
	`</div>` +
	`<div class="recorded-video-wrapper" id="recordedVideoWrapper">` +
	`<div class="offline-state active" id="recordedOfflineState"><div class="offline-icon">🎬</div><h3>No Recorded Videos</h3><p>Recorded broadcasts will appear here.</p></div>` +
	`</div>`

// liveParams tune the third-party player for low latency without chat.
var liveParams = []string{
	"hideChat=1", "hideComments=1", "chat=0", "lowLatency=1", "autoQuality=1",
	"buffer=low", "preload=auto", "autoplay=1", "muted=0", "quality=auto",
}

const (
	liveContainerStyle     = "position: absolute; top: 0; left: 0; width: 100%; height: 100%; z-index: 5;"
	recordedContainerStyle = "width: 100%; min-height: 600px;"
	iframeStyle            = "position: absolute; top: 0; left: 0; width: 100%; height: 100%;"
	iframeAllow            = "autoplay; fullscreen; picture-in-picture"
	thumbnailStyle         = "position: absolute; top: 0; left: 0; width: 100%%; height: 100%%; z-index: 15; background-size: cover; background-position: center; background-image: url('%s'); cursor: pointer; display: block; background-color: var(--bg-secondary, #1a1a1a);"
	badgeStyle             = "position: absolute; top: 20px; left: 20px; background: rgba(255, 0, 0, 0.9); color: white; padding: 8px 16px; border-radius: 4px; font-weight: bold; font-size: 0.9rem; z-index: 17; letter-spacing: 1px;"
	overlayStyle           = "position: absolute; top: 50%; left: 50%; transform: translate(-50%, -50%); z-index: 16; width: 80px; height: 80px; background-color: rgba(255, 68, 68, 0.9); border-radius: 50%; display: flex; align-items: center; justify-content: center; cursor: pointer;"
	playButtonStyle        = "font-size: 2rem; color: white; padding-left: 4px;"
	hiddenStyle            = "display: none; visibility: hidden;"
	visibleStyle           = "display: flex;"
)

// Stage is the mutable document for the video regions.
type Stage struct {
	root *html.Node
}

// New returns a stage with DefaultMarkup.
func New() *Stage {
	s, err := Parse(DefaultMarkup)
	if err != nil {
		panic(fmt.Sprintf("default stage markup: %v", err))
	}
	return s
}

// Parse builds a stage from markup containing both wrapper regions.
func Parse(markup string) (*Stage, error) {
	root := element(atom.Div)
	nodes, err := html.ParseFragment(strings.NewReader(markup), root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stage markup: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	s := &Stage{root: root}
	for _, id := range []string{VideoWrapperID, RecordedVideoWrapperID} {
		if s.byID(id) == nil {
			return nil, fmt.Errorf("%w: %s", ErrRegionMissing, id)
		}
	}
	return s, nil
}

func (s *Stage) byID(id string) *html.Node {
	return findFirst(s.root, byID(id))
}

func (s *Stage) region(id string) (*html.Node, error) {
	if n := s.byID(id); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrRegionMissing, id)
}

// ApplyLiveEmbed replaces the live embed with code. A mounted thumbnail is
// left in place.
func (s *Stage) ApplyLiveEmbed(code string) error {
	wrapper, err := s.region(VideoWrapperID)
	if err != nil {
		return err
	}

	for _, c := range findAll(wrapper, func(n *html.Node) bool {
		if insideClass(n, ThumbnailClass) || hasClass(n, ThumbnailClass) {
			return false
		}
		if hasClass(n, LiveEmbedClass) {
			return true
		}
		style, _ := getAttr(n, "style")
		return strings.Contains(style, "position: absolute") && containsEmbed(n)
	}) {
		detach(c)
	}
	for _, n := range findAll(wrapper, isEmbedNode) {
		if !insideClass(n, ThumbnailClass) {
			detach(n)
		}
	}

	hide(s.byID(OfflineStateID))

	container, err := buildContainer(code, LiveEmbedClass, liveContainerStyle)
	if err != nil {
		return err
	}
	if isThirdPartyPlayer(code) {
		tuneIframes(container)
	}
	wrapper.InsertBefore(container, wrapper.FirstChild)
	recreateScripts(container)
	return nil
}

// ApplyRecordedEmbed replaces the recorded videos embed with code.
func (s *Stage) ApplyRecordedEmbed(code string) error {
	wrapper, err := s.region(RecordedVideoWrapperID)
	if err != nil {
		return err
	}

	for _, c := range findAll(wrapper, func(n *html.Node) bool {
		if hasClass(n, RecordedEmbedClass) {
			return true
		}
		class, _ := getAttr(n, "class")
		style, _ := getAttr(n, "style")
		return n.DataAtom == atom.Div && (strings.Contains(class, "embed") || strings.Contains(style, "width: 100%")) && containsEmbed(n)
	}) {
		detach(c)
	}
	for _, n := range findAll(wrapper, isEmbedNode) {
		detach(n)
	}

	hide(s.byID(RecordedOfflineStateID))

	container, err := buildContainer(code, RecordedEmbedClass, recordedContainerStyle)
	if err != nil {
		return err
	}
	wrapper.InsertBefore(container, wrapper.FirstChild)
	recreateScripts(container)
	return nil
}

// ApplyThumbnail mounts a click-to-play overlay showing ref, replacing any
// previous one, and hides the offline and loading indicators.
func (s *Stage) ApplyThumbnail(ref string) error {
	wrapper, err := s.region(VideoWrapperID)
	if err != nil {
		return err
	}
	for _, n := range findAll(wrapper, byClass(ThumbnailClass)) {
		detach(n)
	}
	for _, n := range findAll(wrapper, byClass(OfflineClass)) {
		hide(n)
	}
	for _, n := range findAll(wrapper, byClass(LoadingClass)) {
		hide(n)
	}

	thumb := element(atom.Div, "class", ThumbnailClass, "style", fmt.Sprintf(thumbnailStyle, cssURL(ref)), "data-action", "play-live")

	badge := element(atom.Div, "class", LiveBadgeClass, "style", badgeStyle)
	badge.AppendChild(text("● LIVE"))
	thumb.AppendChild(badge)

	overlay := element(atom.Div, "class", PlayOverlayClass, "style", overlayStyle)
	button := element(atom.Div, "class", PlayButtonClass, "style", playButtonStyle)
	button.AppendChild(text("▶"))
	overlay.AppendChild(button)
	thumb.AppendChild(overlay)

	wrapper.AppendChild(thumb)
	return nil
}

// RemoveThumbnail unmounts the thumbnail overlay. It reports whether one
// was mounted.
func (s *Stage) RemoveThumbnail() bool {
	wrapper := s.byID(VideoWrapperID)
	if wrapper == nil {
		return false
	}
	thumbs := findAll(wrapper, byClass(ThumbnailClass))
	for _, n := range thumbs {
		detach(n)
	}
	return len(thumbs) > 0
}

// ClearLiveEmbed removes the live embed container.
func (s *Stage) ClearLiveEmbed() bool {
	return s.clear(VideoWrapperID, LiveEmbedClass)
}

// ClearRecordedEmbed removes the recorded embed and shows its offline state.
func (s *Stage) ClearRecordedEmbed() bool {
	removed := s.clear(RecordedVideoWrapperID, RecordedEmbedClass)
	show(s.byID(RecordedOfflineStateID))
	return removed
}

func (s *Stage) clear(regionID, class string) bool {
	wrapper := s.byID(regionID)
	if wrapper == nil {
		return false
	}
	found := findAll(wrapper, byClass(class))
	for _, n := range found {
		detach(n)
	}
	return len(found) > 0
}

// SetOfflineVisible shows or hides the live offline indicator.
func (s *Stage) SetOfflineVisible(visible bool) {
	n := s.byID(OfflineStateID)
	if visible {
		show(n)
		return
	}
	hide(n)
}

// SetLoadingVisible shows or hides the live loading indicator.
func (s *Stage) SetLoadingVisible(visible bool) {
	wrapper := s.byID(VideoWrapperID)
	if wrapper == nil {
		return
	}
	for _, n := range findAll(wrapper, byClass(LoadingClass)) {
		if visible {
			show(n)
		} else {
			hide(n)
		}
	}
}

func (s *Stage) HasThumbnail() bool {
	wrapper := s.byID(VideoWrapperID)
	return wrapper != nil && findFirst(wrapper, byClass(ThumbnailClass)) != nil
}

func (s *Stage) HasLiveEmbed() bool {
	return findFirst(s.root, byClass(LiveEmbedClass)) != nil
}

func (s *Stage) HasRecordedEmbed() bool {
	return findFirst(s.root, byClass(RecordedEmbedClass)) != nil
}

func (s *Stage) OfflineVisible() bool {
	n := s.byID(OfflineStateID)
	return n != nil && hasClass(n, ActiveClass)
}

// LiveEmbedSource returns the src of the first iframe in the live embed.
func (s *Stage) LiveEmbedSource() string {
	container := findFirst(s.root, byClass(LiveEmbedClass))
	if container == nil {
		return ""
	}
	iframe := findFirst(container, func(n *html.Node) bool { return n.DataAtom == atom.Iframe })
	if iframe == nil {
		return ""
	}
	src, _ := getAttr(iframe, "src")
	return src
}

// Render serializes both regions.
func (s *Stage) Render() (string, error) {
	var buf bytes.Buffer
	for c := s.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("failed to render stage: %w", err)
		}
	}
	return buf.String(), nil
}

// Clone returns an independent copy of the stage.
func (s *Stage) Clone() *Stage {
	return &Stage{root: cloneNode(s.root)}
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Namespace: n.Namespace}
	c.Attr = append([]html.Attribute(nil), n.Attr...)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

func hide(n *html.Node) {
	if n == nil {
		return
	}
	removeClass(n, ActiveClass)
	setAttr(n, "style", hiddenStyle)
}

func show(n *html.Node) {
	if n == nil {
		return
	}
	addClass(n, ActiveClass)
	setAttr(n, "style", visibleStyle)
}

func buildContainer(code, class, style string) (*html.Node, error) {
	container := element(atom.Div, "class", class, "style", style)
	nodes, err := html.ParseFragment(strings.NewReader(code), container)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embed code: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

func isThirdPartyPlayer(code string) bool {
	return strings.Contains(code, "yololiv.com") || strings.Contains(code, "yolo.live")
}

// tuneIframes adds the low-latency player parameters and default iframe
// attributes. Parameters already present are not repeated.
func tuneIframes(container *html.Node) {
	for _, n := range findAll(container, func(n *html.Node) bool { return n.DataAtom == atom.Iframe }) {
		if src, ok := getAttr(n, "src"); ok && (strings.Contains(src, "yololiv") || strings.Contains(src, "yolo.live")) {
			setAttr(n, "src", withParams(src))
		}
		if _, ok := getAttr(n, "style"); !ok {
			setAttr(n, "style", iframeStyle)
		}
		if _, ok := getAttr(n, "allow"); !ok {
			setAttr(n, "allow", iframeAllow)
		}
		if _, ok := getAttr(n, "loading"); !ok {
			setAttr(n, "loading", "eager")
		}
	}
}

func withParams(src string) string {
	var missing []string
	for _, p := range liveParams {
		key := p[:strings.IndexByte(p, '=')+1]
		if !strings.Contains(src, "?"+key) && !strings.Contains(src, "&"+key) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return src
	}
	sep := "?"
	if strings.Contains(src, "?") {
		sep = "&"
	}
	return src + sep + strings.Join(missing, "&")
}

// recreateScripts swaps every script for a fresh node with the same
// attributes and body so it runs when the page is served.
func recreateScripts(container *html.Node) {
	for _, old := range findAll(container, func(n *html.Node) bool { return n.DataAtom == atom.Script }) {
		fresh := element(atom.Script)
		fresh.Attr = append([]html.Attribute(nil), old.Attr...)
		if body := textContent(old); body != "" {
			fresh.AppendChild(text(body))
		}
		old.Parent.InsertBefore(fresh, old)
		old.Parent.RemoveChild(old)
	}
}

var cssEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", "", "\r", "")

func cssURL(ref string) string {
	return cssEscaper.Replace(ref)
}
