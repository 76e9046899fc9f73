package template

import (
	"bytes"
	"regexp"
	"strings"
)

// Markers understood by the renderer
const (
	VariableStart = "{{$"
	VariableEnd   = "$}}"
	BlockStart    = "((*"
	BlockEnd      = "*))"
	CommentStart  = "((="
	CommentEnd    = "=))"
)

// RootVariable names the destination root in every render
const RootVariable = "SALTROOT"

var (
	commentPattern = regexp.MustCompile(`(?s)\(\(=.*?=\)\)`)
	blockPattern   = regexp.MustCompile(`(?s)\(\(\*(.*?)\*\)\)`)
	identPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// closing keywords accepted in addition to "end"
	endAliases = map[string]bool{
		"endif":    true,
		"endfor":   true,
		"endwith":  true,
		"endrange": true,
	}
)

// reservedNames are text/template builtins and keywords; variables with
// these names are only reachable as {{$ .NAME $}}
var reservedNames = map[string]bool{
	"and": true, "call": true, "html": true, "index": true, "slice": true,
	"js": true, "len": true, "not": true, "or": true, "print": true,
	"printf": true, "println": true, "urlquery": true,
	"eq": true, "ge": true, "gt": true, "le": true, "lt": true, "ne": true,
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"define": true, "template": true, "block": true, "break": true,
	"continue": true, "nil": true, "true": true, "false": true,
}

// IsReserved reports whether name is a template builtin or keyword
func IsReserved(name string) bool {
	return reservedNames[name]
}

// HasMarkers reports whether content contains any template marker
func HasMarkers(content []byte) bool {
	return bytes.Contains(content, []byte(VariableStart)) ||
		bytes.Contains(content, []byte(BlockStart)) ||
		bytes.Contains(content, []byte(CommentStart))
}

// IsBinary reports whether content looks binary (a NUL byte in the first 8 KiB)
func IsBinary(content []byte) bool {
	head := content
	if len(head) > 8192 {
		head = head[:8192]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// IsIdentifier reports whether name can be exposed as a template function
func IsIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// preprocess rewrites comment and block markers into plain actions
func preprocess(content string) string {
	content = commentPattern.ReplaceAllString(content, "")

	return blockPattern.ReplaceAllStringFunc(content, func(match string) string {
		inner := blockPattern.FindStringSubmatch(match)[1]
		return VariableStart + normalizeStatement(inner) + VariableEnd
	})
}

// normalizeStatement keeps trim markers and maps closing aliases to "end"
func normalizeStatement(inner string) string {
	leftTrim := strings.HasPrefix(inner, "- ")
	rightTrim := strings.HasSuffix(inner, " -")

	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(inner, "- "), " -"))
	if endAliases[body] {
		body = "end"
	}

	out := " " + body + " "
	if leftTrim {
		out = "- " + body + " "
	}
	if rightTrim {
		out = strings.TrimSuffix(out, " ") + " -"
	}
	return out
}
