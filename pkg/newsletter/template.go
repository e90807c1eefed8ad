package newsletter

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>AI Venture Digest</title>
<style>
  body { margin: 0; padding: 0; background: #f4f4f7; font-family: -apple-system, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; color: #1f2430; }
  .wrapper { max-width: 640px; margin: 0 auto; padding: 24px 16px; }
  .card { background: #ffffff; border-radius: 10px; padding: 28px; }
  .header h1 { margin: 0 0 4px; font-size: 24px; }
  .header p { margin: 0; color: #6b7280; font-size: 14px; }
  .stats { margin: 16px 0 24px; padding: 10px 14px; background: #eef2ff; border-radius: 8px; font-size: 13px; color: #3730a3; }
  .section h2 { font-size: 17px; margin: 28px 0 10px; border-bottom: 2px solid #eef2ff; padding-bottom: 6px; }
  .item { margin: 0 0 16px; }
  .item a { color: #4338ca; text-decoration: none; font-weight: 600; font-size: 15px; }
  .item .meta { font-size: 12px; color: #9ca3af; margin-top: 2px; }
  .item .desc { font-size: 13px; color: #4b5563; margin-top: 4px; line-height: 1.45; }
  .quickwin { background: #fefce8; border-radius: 8px; padding: 12px 14px; margin: 0 0 10px; }
  .quickwin .label { font-size: 11px; font-weight: 700; color: #a16207; text-transform: uppercase; letter-spacing: .04em; }
  .featured { background: #f0fdf4; border-radius: 8px; padding: 14px; margin-top: 8px; }
  .footer { text-align: center; font-size: 12px; color: #9ca3af; margin-top: 24px; line-height: 1.6; }
  .footer a { color: #6b7280; }
</style>
</head>
<body>
<div class="wrapper">
  <div class="card">
    <div class="header">
      <h1>⚡ AI Venture Digest</h1>
      <p>{{.Date}}</p>
    </div>
    <div class="stats">{{.ItemCount}} hand-filtered picks for builders today</div>

    {{if .QuickWins}}
    <div class="section">
      <h2>⚡ Quick Wins</h2>
      {{range .QuickWins}}
      <div class="quickwin">
        <div class="label">{{.Label}}</div>
        <div class="item">
          <a href="{{.URL}}">{{.Title}}</a>
          {{if .Description}}<div class="desc">{{.Description}}</div>{{end}}
          <div class="meta">{{.Source}}</div>
        </div>
      </div>
      {{end}}
    </div>
    {{end}}

    {{range .Sections}}
    <div class="section">
      <h2>{{emoji .Category}} {{.Title}}</h2>
      {{range .Items}}
      <div class="item">
        <a href="{{.URL}}">{{.Title}}</a>
        <div class="meta">{{.Source}} · score {{.DisplayScore}}</div>
        {{if .Description}}<div class="desc">{{.Description}}</div>{{end}}
      </div>
      {{end}}
    </div>
    {{end}}

    {{if .Featured}}
    <div class="section">
      <h2>🎙️ Featured Episode</h2>
      <div class="featured">
        <div class="item">
          <a href="{{.Featured.URL}}">{{.Featured.Title}}</a>
          <div class="meta">{{.Featured.Source}}{{if .Featured.PodcastDuration}} · {{.Featured.PodcastDuration}}{{end}}</div>
          {{if .Featured.Description}}<div class="desc">{{.Featured.Description}}</div>{{end}}
        </div>
      </div>
    </div>
    {{end}}

    {{if .Social}}
    <div class="section">
      <h2>💬 From the Timeline</h2>
      {{range .Social}}
      <div class="item">
        <a href="{{.URL}}">{{.Title}}</a>
        <div class="meta">{{.Source}}</div>
        {{if .Description}}<div class="desc">{{.Description}}</div>{{end}}
      </div>
      {{end}}
    </div>
    {{end}}
  </div>

  <div class="footer">
    {{if .WebsiteURL}}<a href="{{.WebsiteURL}}">Read online</a> ·{{end}}
    You are receiving this because you subscribed to AI Venture Digest.<br>
    <a href="*|UNSUB|*">Unsubscribe</a> · <a href="*|UPDATE_PROFILE|*">Update preferences</a>
  </div>
</div>
</body>
</html>
`
