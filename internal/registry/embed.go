package registry

import (
	"embed"
	"io/fs"
)

// builtinGrammars holds the grammars shipped with the binary:
//   - grammars/<Name>.sublime-syntax
//
//go:embed grammars
var builtinGrammars embed.FS

// BuiltinFS returns the embedded grammars rooted at the grammars directory.
func BuiltinFS() fs.FS {
	sub, err := fs.Sub(builtinGrammars, "grammars")
	if err != nil {
		// fs.Sub only fails on an invalid path.
		panic(err)
	}
	return sub
}
