package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/view"
)

const sessionCookie = "session_id"

type templates struct {
	index *template.Template
	game  *template.Template
	root  *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>` + stylesheet + `</style>
</head><body>{{template "content" .}}</body></html>`))
	template.Must(base.New("root").Parse(rootTemplate))

	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1>
<form action="/game" method="post"><button>New game</button></form>
{{if .}}<p><a href="/game/{{.}}">Resume game</a></p>{{end}}`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events" sse-swap="board" hx-target="#root" hx-swap="outerHTML">
{{template "root" .}}
</div>`))
	// Standalone fragment used for htmx swaps and broadcasts
	root := template.Must(template.New("root_only").Parse(rootTemplate))
	return &templates{index: index, game: game, root: root}
}

func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rootData is what the root fragment renders.
type rootData struct {
	ID   string
	Game view.Game
}

const rootTemplate = `
<div id="root" class="game">
  <div class="game-board">
  {{range .Game.Rows}}
    <div class="board-row">
    {{range .}}
      <button class="square{{if .Winning}} winning{{end}}" name="cell" value="{{.Index}}"
        hx-post="/game/{{$.ID}}/play" hx-target="#root" hx-swap="outerHTML">{{.Mark}}</button>
    {{end}}
    </div>
  {{end}}
  </div>
  <div class="game-info">
    <div class="status">{{.Game.Status}}</div>
    <button class="toggle" hx-post="/game/{{.ID}}/reverse" hx-target="#root" hx-swap="outerHTML">
      {{if .Game.Reversed}}Sort ascending{{else}}Sort descending{{end}}
    </button>
    {{if .Game.Reversed}}<ol class="moves" reversed>{{else}}<ol class="moves">{{end}}
    {{range .Game.Entries}}
      <li><button name="step" value="{{.Step}}" hx-post="/game/{{$.ID}}/jump" hx-target="#root" hx-swap="outerHTML">
        {{if .Current}}<b>{{.Label}}</b>{{else}}{{.Label}}{{end}}</button>{{with .Location}} <span class="loc">{{.}}</span>{{end}}</li>
    {{end}}
    </ol>
  </div>
</div>
`

const stylesheet = `
body { font: 14px "Century Gothic", Futura, sans-serif; margin: 20px; }
.board-row:after { clear: both; content: ""; display: table; }
.square { background: #fff; border: 1px solid #999; float: left; font-size: 24px; font-weight: bold;
  line-height: 34px; height: 34px; margin-right: -1px; margin-top: -1px; padding: 0; text-align: center; width: 34px; }
.square.winning { background: #ff6; }
.game { display: flex; flex-direction: row; }
.game-info { margin-left: 20px; }
ol, ul { padding-left: 30px; }
`

// sessionFromCookie returns the session id remembered by the browser, if any.
func sessionFromCookie(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}
