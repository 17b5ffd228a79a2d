// Package configs embeds the configuration templates written by `ftmodel config init`.
//
// Templates:
//   - user-config.example.yaml: machine settings (Redis connection, server, logging)
//   - project-config.example.yaml: the database name and model declarations for one project
//
// Precedence at load time (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/ftmodel/config.yaml)
//  3. Project config (.ftmodel.yaml)
//  4. Environment variables (FTMODEL_*)
package configs

import _ "embed"

// UserConfigTemplate is the template for ~/.config/ftmodel/config.yaml.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for .ftmodel.yaml.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
