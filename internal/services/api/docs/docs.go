// Package docs holds the OpenAPI description of the read API
package docs

import (
	_ "embed"

	"glolotto/internal/core/version"

	"github.com/swaggo/swag/v2"
)

//go:embed doc.json
var docTemplate string

// SwaggerInfo renders doc.json with the build version filled in
var SwaggerInfo = &swag.Spec{
	Version:          version.Version(),
	Title:            "glolotto read API",
	Description:      "GLO lottery draws, prizes and winning numbers",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
