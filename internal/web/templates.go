package web

import "html/template"

var templateFuncs = template.FuncMap{
	// the color input cannot show "theme default"
	"colorInput": func(c string) string {
		if c == "" {
			return "#000000"
		}
		return c
	},
	"colorLabel": func(c string) string {
		if c == "" {
			return "Default"
		}
		return c
	},
}
