package templates

// Stylesheet is served at /static/site.css. Stage selectors follow the
// class names in the stage package.
const Stylesheet = `:root{--bg:#0d0d12;--fg:#f2f2f5;--muted:#9a9aab;--accent:#e4322b;--card:#1a1a24}
*{box-sizing:border-box}
body{margin:0;font-family:system-ui,-apple-system,"Segoe UI",Roboto,sans-serif;background:var(--bg);color:var(--fg)}
a{color:inherit}
main{max-width:1100px;margin:0 auto;padding:1.5rem}
.site-nav{display:flex;gap:1.25rem;align-items:center;padding:1rem 1.5rem;border-bottom:1px solid #2a2a36}
.site-nav a{text-decoration:none;color:var(--muted)}
.site-nav a.active,.site-nav .brand{color:var(--fg);font-weight:600}
.site-nav .brand{margin-right:auto}
.tagline{color:var(--muted)}
.stage{position:relative;margin:1rem 0}
.video-wrapper,.recorded-video-wrapper{position:relative;aspect-ratio:16/9;background:#000;border-radius:8px;overflow:hidden;margin-bottom:1.5rem}
.video-wrapper iframe,.video-wrapper video,.recorded-video-wrapper iframe{position:absolute;inset:0;width:100%;height:100%;border:0}
.live-video-thumbnail{cursor:pointer}
.thumbnail-play-button:hover{transform:translate(-50%,-50%) scale(1.08)}
.offline-state{position:absolute;inset:0;z-index:2;display:none;visibility:hidden;flex-direction:column;align-items:center;justify-content:center;background:rgba(0,0,0,.85);text-align:center}
.offline-state.active{display:flex;visibility:visible}
.stream-loading{position:absolute;inset:0;z-index:1;display:none;flex-direction:column;align-items:center;justify-content:center;color:var(--muted)}
.stream-loading.active{display:flex}
.spinner{width:36px;height:36px;border:3px solid #333;border-top-color:var(--accent);border-radius:50%;animation:spin 1s linear infinite}
@keyframes spin{to{transform:rotate(360deg)}}
.live-badge{color:var(--accent);font-size:.8em}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(240px,1fr));gap:1rem}
.grid img{width:100%;border-radius:6px}
.video-card,.event-card{background:var(--card);padding:.75rem;border-radius:8px}
figure{margin:0}
figcaption,.empty{color:var(--muted)}
.filters{display:flex;gap:.5rem;margin-bottom:1rem}
.filters a{padding:.35rem .8rem;border-radius:999px;background:var(--card);text-decoration:none;text-transform:capitalize}
.filters a.active{background:var(--accent)}
.schedule-list{list-style:none;padding:0}
.schedule-item{background:var(--card);border-radius:8px;padding:1rem;margin-bottom:.75rem}
.schedule-item .badge{font-size:.75rem;color:var(--muted)}
.status-live .badge{color:var(--accent)}
.calendar{width:100%;border-collapse:collapse;table-layout:fixed}
.calendar td{vertical-align:top;height:5rem;border:1px solid #2a2a36;padding:.25rem;font-size:.8rem}
.cal-event{background:var(--accent);border-radius:3px;padding:0 .25rem;margin-top:.2rem;overflow:hidden;white-space:nowrap;text-overflow:ellipsis}
.admin-overlay{position:fixed;inset:0;z-index:100;display:flex;align-items:center;justify-content:center;background:rgba(0,0,0,.7)}
.admin-overlay[hidden]{display:none}
.admin-login{background:var(--card);padding:1.5rem;border-radius:10px;display:flex;flex-direction:column;gap:.75rem;min-width:300px}
.admin-login input{display:block;width:100%;margin-top:.25rem;padding:.5rem;border-radius:4px;border:1px solid #3a3a48;background:#111;color:var(--fg)}
.form-error{color:var(--accent);min-height:1.2em;margin:0}
footer{text-align:center;color:var(--muted);padding:2rem 1rem}
footer a{margin:0 .5rem}
`
