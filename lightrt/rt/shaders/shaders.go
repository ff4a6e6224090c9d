package shaders

import (
	_ "embed"
)

//go:embed notation.wgsl
var NotationWGSL string

//go:embed lighting.wgsl
var LightingWGSL string
