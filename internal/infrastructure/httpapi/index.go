package httpapi

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/doeshing/qrshield/internal/domain"
)

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"colour": verdictColour,
	"inc":    func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<title>QR Code 防詐掃描</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: .3rem .6rem; text-align: left; }
</style>
</head>
<body>
<h1>📷 QR Code 防詐掃描</h1>
<form method="post" action="/api/scan" enctype="multipart/form-data">
<input type="file" name="image" accept="image/*">
<button type="submit">掃描</button>
</form>
<form method="post" action="/api/capture">
<input type="text" name="text" placeholder="QR Code 內容">
<button type="submit">檢查</button>
</form>
<h2>📜 掃描紀錄</h2>
{{if .Records}}
<table>
<tr><th>序號</th><th>掃描結果</th><th>判定</th><th>掃描時間</th></tr>
{{range $i, $r := .Records}}<tr style="color: {{colour $r.Verdict}}"><td>{{inc $i}}</td><td>{{$r.Payload}}</td><td>{{$r.Label}}</td><td>{{$r.FormattedTime}}</td></tr>
{{end}}</table>
<p><a href="/api/history.csv?layout=capture">📥 下載掃描紀錄 CSV</a></p>
{{else}}
<p>尚無掃描紀錄</p>
{{end}}
</body>
</html>
`))

type indexPage struct {
	Records []domain.ScanRecord
}

// handleIndex answers the url_to_check query with a bare label, otherwise renders the
// session history.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if target := strings.TrimSpace(r.URL.Query().Get("url_to_check")); target != "" {
		writeText(w, http.StatusOK, s.Scanner.Lookup(r.Context(), target).Label())
		return
	}

	sess, err := s.session(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	records, err := sess.Snapshot()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexPage{Records: records}); err != nil {
		s.logger().Error("render index failed", err, nil)
	}
}

func verdictColour(v domain.Verdict) string {
	switch v {
	case domain.VerdictSafe:
		return "green"
	case domain.VerdictSuspicious:
		return "orange"
	default:
		return "red"
	}
}
