// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	"time"
)

// citationReportData feeds the citation listing template.
type citationReportData struct {
	PaperTitle  string
	GeneratedAt string
	Stats       Stats
	Rows        []Row
}

// WriteCitationReport renders the full citation listing with summary
// statistics to an HTML file.
func WriteCitationReport(path, paperTitle string, rows []Row, stats Stats, generatedAt time.Time) error {
	data := citationReportData{
		PaperTitle:  paperTitle,
		GeneratedAt: generatedAt.Format("2006-01-02 15:04:05"),
		Stats:       stats,
		Rows:        rows,
	}
	return renderHTML(path, citationReportTmpl, data)
}

// AuthorEntry groups a single author's affiliations and articles.
type AuthorEntry struct {
	Name         string
	Affiliations string
	Articles     []AuthorArticle
}

// AuthorArticle is one citing article under an author's entry.
type AuthorArticle struct {
	Title string
	Year  string
}

// BuildAuthorIndex inverts the rows into per-author entries, sorted by
// article count descending then by name.
func BuildAuthorIndex(rows []Row) []AuthorEntry {
	type authorData struct {
		affiliations map[string]struct{}
		articles     []AuthorArticle
	}
	index := make(map[string]*authorData)

	for _, row := range rows {
		if row.Authors == Missing {
			continue
		}
		affMap := parseAuthorAffMap(row.AuthorAffMap)
		for _, author := range splitList(row.Authors) {
			entry, ok := index[author]
			if !ok {
				entry = &authorData{affiliations: make(map[string]struct{})}
				index[author] = entry
			}
			entry.articles = append(entry.articles, AuthorArticle{Title: row.Title, Year: row.Year})
			for _, aff := range affMap[author] {
				entry.affiliations[aff] = struct{}{}
			}
		}
	}

	entries := make([]AuthorEntry, 0, len(index))
	for name, data := range index {
		affs := Missing
		if len(data.affiliations) > 0 {
			affs = strings.Join(sortedKeys(data.affiliations), "; ")
		}
		entries = append(entries, AuthorEntry{
			Name:         name,
			Affiliations: affs,
			Articles:     data.articles,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].Articles) != len(entries[j].Articles) {
			return len(entries[i].Articles) > len(entries[j].Articles)
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries
}

// parseAuthorAffMap reverses the "Name (Aff1; Aff2) | Name2 (...)"
// encoding into a name→affiliations map. Entries without parentheses or
// with the missing marker contribute no affiliations.
func parseAuthorAffMap(field string) map[string][]string {
	mapping := make(map[string][]string)
	if field == "" || field == Missing {
		return mapping
	}
	for _, part := range strings.Split(field, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := part
		var affs []string
		if open := strings.Index(part, "("); open >= 0 {
			if close := strings.LastIndex(part, ")"); close > open {
				name = strings.TrimSpace(part[:open])
				for _, aff := range splitList(part[open+1 : close]) {
					if aff != Missing {
						affs = append(affs, aff)
					}
				}
			}
		}
		if name != "" {
			mapping[name] = append(mapping[name], affs...)
		}
	}
	return mapping
}

// authorReportData feeds the per-author template.
type authorReportData struct {
	PaperTitle  string
	GeneratedAt string
	Authors     []AuthorEntry
}

// WriteAuthorReport renders the per-author listing to an HTML file.
func WriteAuthorReport(path, paperTitle string, rows []Row, generatedAt time.Time) error {
	data := authorReportData{
		PaperTitle:  paperTitle,
		GeneratedAt: generatedAt.Format("2006-01-02 15:04:05"),
		Authors:     BuildAuthorIndex(rows),
	}
	return renderHTML(path, authorReportTmpl, data)
}

func renderHTML(path string, tmpl *template.Template, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

const reportCSS = `
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; background: #f5f5f5; padding: 20px; }
.container { max-width: 1400px; margin: 0 auto; background: white; padding: 40px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 15px; margin-bottom: 30px; }
h2 { color: #34495e; margin-top: 40px; margin-bottom: 20px; border-left: 5px solid #3498db; padding-left: 15px; }
h3 { color: #2c3e50; margin-top: 20px; }
.stat-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 15px; margin: 20px 0; }
.stat-item { background: white; padding: 15px; border-left: 4px solid #3498db; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
.stat-label { font-size: 0.9em; color: #7f8c8d; margin-bottom: 5px; }
.stat-value { font-size: 2em; font-weight: bold; color: #2c3e50; }
table { width: 100%; border-collapse: collapse; margin: 20px 0; }
th { background: #3498db; color: white; padding: 12px; text-align: left; }
td { padding: 10px 12px; border-bottom: 1px solid #ecf0f1; }
tr:hover { background: #f8f9fa; }
.article-item { background: white; padding: 15px; margin: 15px 0; border-left: 4px solid #3498db; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
.article-title { font-weight: bold; color: #2c3e50; margin-bottom: 8px; font-size: 1.1em; }
.article-meta { color: #7f8c8d; font-size: 0.95em; margin: 4px 0; }
.article-link { display: inline-block; margin-top: 8px; color: #3498db; text-decoration: none; font-weight: 600; }
.footer { margin-top: 40px; text-align: center; color: #95a5a6; font-size: 0.9em; }
`

var tmplFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

var citationReportTmpl = template.Must(template.New("citations").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Citation Report</title>
<style>` + reportCSS + `</style>
</head>
<body>
<div class="container">
<h1>Citation Report</h1>
<p>Citations of <strong>{{.PaperTitle}}</strong>, with self-citations by the
original authors removed and author-affiliation data merged in. Data updated {{.GeneratedAt}}.</p>

<div class="stat-grid">
<div class="stat-item"><div class="stat-label">Raw citation records</div><div class="stat-value">{{.Stats.RawCount}}</div></div>
<div class="stat-item"><div class="stat-label">Records after filtering</div><div class="stat-value">{{.Stats.FilteredCount}}</div></div>
<div class="stat-item"><div class="stat-label">Distinct affiliations</div><div class="stat-value">{{.Stats.UniqueAffiliations}}</div></div>
<div class="stat-item"><div class="stat-label">Missing affiliation data</div><div class="stat-value">{{.Stats.MissingAffiliations}}</div></div>
</div>

<h2>Citations per year</h2>
<table>
<thead><tr><th>Year</th><th>Citations</th></tr></thead>
<tbody>
{{range .Stats.YearCounts}}<tr><td>{{.Year}}</td><td>{{.Count}}</td></tr>
{{end}}</tbody>
</table>

<h2>Top affiliations</h2>
<table>
<thead><tr><th>Rank</th><th>Affiliation</th><th>Count</th></tr></thead>
<tbody>
{{range $i, $nc := .Stats.TopAffiliations}}<tr><td>{{inc $i}}</td><td>{{$nc.Name}}</td><td>{{$nc.Count}}</td></tr>
{{end}}</tbody>
</table>

<h2>Top authors</h2>
<table>
<thead><tr><th>Rank</th><th>Author</th><th>Count</th></tr></thead>
<tbody>
{{range $i, $nc := .Stats.TopAuthors}}<tr><td>{{inc $i}}</td><td>{{$nc.Name}}</td><td>{{$nc.Count}}</td></tr>
{{end}}</tbody>
</table>

<h2>Citing articles ({{.Stats.FilteredCount}})</h2>
{{range .Rows}}<div class="article-item">
<div class="article-title">{{.Index}}. {{.Title}}</div>
<div class="article-meta"><strong>Authors:</strong> {{.Authors}}</div>
<div class="article-meta"><strong>Author affiliations:</strong> {{.AuthorAffMap}}</div>
<div class="article-meta"><strong>Year:</strong> {{.Year}}</div>
<div class="article-meta"><strong>Venue:</strong> {{.Venue}}</div>
{{if .DOI}}<div class="article-meta"><strong>DOI:</strong> {{.DOI}}</div>{{end}}
{{if ne .SourceLink "missing"}}<a class="article-link" href="{{.SourceLink}}" target="_blank">View source</a>{{end}}
</div>
{{end}}
<div class="footer"><p>Generated {{.GeneratedAt}}</p></div>
</div>
</body>
</html>
`))

var authorReportTmpl = template.Must(template.New("authors").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Citing Authors Report</title>
<style>` + reportCSS + `</style>
</head>
<body>
<div class="container">
<h1>Citing Authors</h1>
<p>{{len .Authors}} authors cite <strong>{{.PaperTitle}}</strong>. Each entry
lists the author's known affiliations and the citing articles.</p>

{{range $i, $a := .Authors}}<div class="author-block">
<h3>{{inc $i}}. {{$a.Name}}</h3>
<p><strong>Affiliations:</strong> {{$a.Affiliations}}</p>
<table>
<thead><tr><th>#</th><th>Title</th><th>Year</th></tr></thead>
<tbody>
{{range $j, $art := $a.Articles}}<tr><td>{{inc $j}}</td><td>{{$art.Title}}</td><td>{{$art.Year}}</td></tr>
{{end}}</tbody>
</table>
</div>
{{end}}
<div class="footer"><p>Generated {{.GeneratedAt}}</p></div>
</div>
</body>
</html>
`))
