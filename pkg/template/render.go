package template

import (
	"bytes"
	"sort"
	"text/template"

	"github.com/arthur-debert/saltbox/pkg/errors"
)

// Variables maps variable names to their values
type Variables map[string]string

// With returns a copy of v with name set to value
func (v Variables) With(name, value string) Variables {
	out := make(Variables, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out[name] = value
	return out
}

// Names returns the variable names in sorted order
func (v Variables) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v Variables) funcMap() template.FuncMap {
	funcs := template.FuncMap{}
	for name, value := range v {
		if !IsIdentifier(name) || IsReserved(name) {
			continue
		}
		value := value
		funcs[name] = func() string { return value }
	}
	return funcs
}

func (v Variables) data() map[string]string {
	data := make(map[string]string, len(v))
	for k, val := range v {
		data[k] = val
	}
	return data
}

// RenderString renders content with vars. Unknown variables are errors.
func RenderString(name, content string, vars Variables) (string, error) {
	tmpl, err := template.New(name).
		Delims(VariableStart, VariableEnd).
		Option("missingkey=error").
		Funcs(vars.funcMap()).
		Parse(preprocess(content))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRender, "cannot parse %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars.data()); err != nil {
		return "", errors.Wrapf(err, errors.ErrRender, "cannot render %s", name)
	}
	return buf.String(), nil
}
