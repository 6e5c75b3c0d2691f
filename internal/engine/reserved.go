package engine

import "strings"

// reservedVars are PHP variables whose names carry meaning to the runtime.
// Renaming any of these would break the script. Names are case-sensitive.
// Reference: https://www.php.net/manual/en/reserved.variables.php
var reservedVars = map[string]bool{
	"$this":    true,
	"$GLOBALS": true,
	// Superglobals
	"$_SERVER": true, "$_GET": true, "$_POST": true, "$_FILES": true,
	"$_COOKIE": true, "$_SESSION": true, "$_REQUEST": true, "$_ENV": true,
	// Set by the engine in the local scope
	"$argc": true, "$argv": true,
	"$http_response_header": true,
	"$php_errormsg":         true,
}

// propertyModifiers introduce a property declaration (or a promoted
// constructor parameter); the variable that follows is a property name.
var propertyModifiers = map[string]bool{
	"public": true, "protected": true, "private": true,
	"var": true, "static": true, "readonly": true,
}

// phpKeywords are never part of a type declaration.
var phpKeywords = map[string]bool{
	"abstract": true, "and": true, "as": true, "break": true,
	"case": true, "catch": true, "class": true, "clone": true,
	"const": true, "continue": true, "declare": true, "default": true, "do": true,
	"echo": true, "else": true, "elseif": true, "empty": true, "enddeclare": true,
	"endfor": true, "endforeach": true, "endif": true, "endswitch": true,
	"endwhile": true, "enum": true, "eval": true, "exit": true, "extends": true,
	"final": true, "finally": true, "fn": true, "for": true, "foreach": true,
	"function": true, "global": true, "goto": true, "if": true, "implements": true,
	"include": true, "include_once": true, "instanceof": true, "insteadof": true,
	"interface": true, "isset": true, "list": true, "match": true, "namespace": true,
	"new": true, "or": true, "print": true, "require": true, "require_once": true,
	"return": true, "switch": true, "throw": true, "trait": true, "try": true,
	"unset": true, "use": true, "while": true, "xor": true, "yield": true,
}

func isKeyword(ident string) bool {
	return phpKeywords[strings.ToLower(ident)]
}

// isReservedVariable reports whether name (with or without "$") must never be renamed.
func isReservedVariable(name string) bool {
	if name == "" {
		return true
	}
	return reservedVars[normalizeVar(name)]
}
