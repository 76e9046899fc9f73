package formula

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/google/shlex"
	"github.com/spf13/pflag"
)

// normalize fills dest and type and checks the default against the type
func (a *Arg) normalize() error {
	if strings.Trim(a.Name, "-") == "" {
		return errors.New(errors.ErrManifestInvalid, "argument without a name")
	}
	if !strings.HasPrefix(a.Name, "-") {
		// bare names are positional, like argparse
		a.Positional = true
	}
	if a.Dest == "" {
		a.Dest = strings.ReplaceAll(a.flagName(), "-", "_")
	}
	if a.Type == "" {
		a.Type = TypeString
	}

	switch a.Type {
	case TypeString, TypeBool, TypeInt:
	default:
		return errors.Newf(errors.ErrManifestInvalid, "argument %s has unknown type %q", a.Name, a.Type)
	}

	if a.Default != nil {
		if _, err := a.convert(fmt.Sprint(a.Default)); err != nil {
			return errors.Wrapf(err, errors.ErrManifestInvalid, "argument %s has a bad default", a.Name)
		}
	}
	return nil
}

func (a *Arg) flagName() string {
	return strings.TrimLeft(a.Name, "-")
}

func (a *Arg) convert(raw string) (interface{}, error) {
	switch a.Type {
	case TypeBool:
		return strconv.ParseBool(raw)
	case TypeInt:
		return strconv.Atoi(raw)
	default:
		return raw, nil
	}
}

func (a *Arg) defaultValue() interface{} {
	if a.Default == nil {
		if a.Type == TypeBool {
			return false
		}
		return nil
	}
	v, _ := a.convert(fmt.Sprint(a.Default))
	return v
}

// FlagSet builds the pflag set for the formula's optional arguments
func (f *Formula) FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(f.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)

	for i := range f.Args {
		arg := &f.Args[i]
		if arg.Positional {
			continue
		}
		switch arg.Type {
		case TypeBool:
			def, _ := arg.defaultValue().(bool)
			fs.Bool(arg.flagName(), def, arg.Help)
		case TypeInt:
			def, _ := arg.defaultValue().(int)
			fs.Int(arg.flagName(), def, arg.Help)
		default:
			def, _ := arg.defaultValue().(string)
			fs.String(arg.flagName(), def, arg.Help)
		}
	}
	return fs
}

// Usage describes the formula's arguments
func (f *Formula) Usage() string {
	var buf bytes.Buffer
	buf.WriteString("Usage: " + f.Name)
	for _, arg := range f.Args {
		if !arg.Positional {
			continue
		}
		if arg.Required {
			buf.WriteString(" <" + arg.Name + ">")
		} else {
			buf.WriteString(" [" + arg.Name + "]")
		}
	}
	buf.WriteString(" [flags]\n")

	if f.Description != "" {
		buf.WriteString("\n" + strings.TrimSpace(f.Description) + "\n")
	}

	var positional bytes.Buffer
	for _, arg := range f.Args {
		if arg.Positional {
			fmt.Fprintf(&positional, "  %-20s %s\n", arg.Name, arg.Help)
		}
	}
	if positional.Len() > 0 {
		buf.WriteString("\nArguments:\n")
		buf.Write(positional.Bytes())
	}

	if flags := f.FlagSet().FlagUsages(); flags != "" {
		buf.WriteString("\nFlags:\n" + flags)
	}
	return buf.String()
}

// ParseArgs parses command-line arguments into pillar values keyed by dest
func (f *Formula) ParseArgs(args []string) (map[string]interface{}, error) {
	fs := f.FlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFormulaArguments, "invalid arguments for %s", f.Name)
	}

	values := map[string]interface{}{}
	rest := fs.Args()

	for i := range f.Args {
		arg := &f.Args[i]

		if arg.Positional {
			if len(rest) == 0 {
				if arg.Required {
					return nil, errors.Newf(errors.ErrFormulaArguments, "missing required argument %s", arg.Name)
				}
				values[arg.Dest] = arg.defaultValue()
				continue
			}
			v, err := arg.convert(rest[0])
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFormulaArguments, "invalid value %q for %s", rest[0], arg.Name)
			}
			values[arg.Dest] = v
			rest = rest[1:]
			continue
		}

		name := arg.flagName()
		if arg.Required && !fs.Changed(name) {
			return nil, errors.Newf(errors.ErrFormulaArguments, "missing required flag --%s", name)
		}
		if !fs.Changed(name) {
			values[arg.Dest] = arg.defaultValue()
			continue
		}

		var v interface{}
		var err error
		switch arg.Type {
		case TypeBool:
			v, err = fs.GetBool(name)
		case TypeInt:
			v, err = fs.GetInt(name)
		default:
			v, err = fs.GetString(name)
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFormulaArguments, "cannot read --%s", name)
		}
		values[arg.Dest] = v
	}

	if len(rest) > 0 {
		return nil, errors.Newf(errors.ErrFormulaArguments, "unexpected arguments for %s: %v", f.Name, rest)
	}
	return values, nil
}

// Command builds the salt command line for values:
// runner tokens, the formula name, the JSON pillar and the saltenv
func (f *Formula) Command(values map[string]interface{}) ([]string, error) {
	runner, err := shlex.Split(f.Runner)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestInvalid, "cannot split runner of %s", f.Name)
	}
	if len(runner) == 0 {
		return nil, errors.Newf(errors.ErrManifestInvalid, "formula %s has an empty runner", f.Name)
	}

	if values == nil {
		values = map[string]interface{}{}
	}
	pillar, err := json.Marshal(values)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFormulaArguments, "cannot encode pillar for %s", f.Name)
	}

	cmd := append(runner, f.Name, "pillar="+string(pillar))
	if f.SaltEnv != "" {
		cmd = append(cmd, "saltenv="+f.SaltEnv)
	}
	return cmd, nil
}
