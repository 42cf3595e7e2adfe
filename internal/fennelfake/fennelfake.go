// Package fennelfake embeds a small Lua module that mimics the parts of
// fennel.lua the host uses, so tests can run without the real compiler.
package fennelfake

import _ "embed"

// Version is the version string the fake reports.
const Version = "1.5.1-fake"

// Source is the text of the fake fennel module.
//
//go:embed fennel.lua
var Source []byte
