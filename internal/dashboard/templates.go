package dashboard

import "html/template"

var pageTemplates = template.Must(template.New("layout").Parse(`{{define "layout"}}<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<header>
{{if .Identity}}<span>{{.Identity.DisplayName}} ({{.Identity.Role}})</span>
<form method="post" action="/logout"><input type="hidden" name="form_token" value="{{.FormToken}}"><button type="submit">Sign out</button></form>{{end}}
</header>
{{if .Nav}}<nav><ul>{{range .Nav}}<li><a href="{{.Path}}">{{.Title}}</a></li>{{end}}</ul></nav>{{end}}
<main>{{template "content" .}}</main>
</body></html>{{end}}`))

var loginTemplate = template.Must(template.Must(pageTemplates.Clone()).Parse(`{{define "content"}}
<h1>Sign in</h1>
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
<form method="post" action="/login">
<input type="hidden" name="from" value="{{.From}}">
<input type="hidden" name="form_token" value="{{.FormToken}}">
<label>Email <input name="email" type="email" required></label>
<label>Password <input name="password" type="password" required></label>
<button type="submit">Sign in</button>
</form>{{end}}`))

var pageTemplate = template.Must(template.Must(pageTemplates.Clone()).Parse(`{{define "content"}}
<h1>{{.Title}}</h1>
{{if .Identity}}<dl>
<dt>User</dt><dd>{{.Identity.ID}}</dd>
<dt>Email</dt><dd>{{.Identity.Email}}</dd>
<dt>Permissions</dt><dd>{{range .Permissions}}<code>{{.}}</code> {{else}}none{{end}}</dd>
</dl>{{end}}
{{if .Actions}}<section><h2>Actions</h2><ul>{{range .Actions}}<li>{{.}}</li>{{end}}</ul></section>{{end}}
{{end}}`))

var forbiddenTemplate = template.Must(template.Must(pageTemplates.Clone()).Parse(`{{define "content"}}
<h1>Access denied</h1>
<p>Your account does not have access to this page.</p>
<p><a href="/">Back to home</a></p>{{end}}`))
