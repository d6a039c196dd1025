// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// hclFile is the HCL shape of a definition:
//
//	settings {
//	  max_processes = 2
//	}
//
//	asset "site" {
//	  path     = "${env.HOME}/site"
//	  commands = ["npm ci", "npm run build"]
//	}
type hclFile struct {
	Settings *Settings  `hcl:"settings,block"`
	Assets   []hclAsset `hcl:"asset,block"`
}

type hclAsset struct {
	Name     string   `hcl:"name,label"`
	Path     string   `hcl:"path,optional"`
	Commands []string `hcl:"commands,optional"`
}

func parseHCL(data []byte, filename string) (*Definition, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, multierror.Append(nil, diags.Errs()...)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &raw); diags.HasErrors() {
		return nil, multierror.Append(nil, diags.Errs()...)
	}

	def := &Definition{Assets: make([]AssetDefinition, 0, len(raw.Assets))}
	if raw.Settings != nil {
		def.Settings = *raw.Settings
	}

	for _, a := range raw.Assets {
		def.Assets = append(def.Assets, AssetDefinition(a))
	}

	return def, nil
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}
}

// envObject exposes the process environment to expressions as env.NAME.
func envObject() cty.Value {
	vars := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		vars[k] = cty.StringVal(v)
	}

	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}

	return cty.ObjectVal(vars)
}
