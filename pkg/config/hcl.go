// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// hclConfig is the HCL schema for Config
type hclConfig struct {
	VaultPath       string   `hcl:"vault_path,optional"`
	TranslationPath string   `hcl:"translation_path,optional"`
	ViewerPath      string   `hcl:"viewer_path,optional"`
	BackupDir       string   `hcl:"backup_dir,optional"`
	NoteExtension   string   `hcl:"note_extension,optional"`
	Ignore          []string `hcl:"ignore,optional"`
	Workers         int      `hcl:"workers,optional"`
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "conf.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &Config{
		VaultPath:       hclCfg.VaultPath,
		TranslationPath: hclCfg.TranslationPath,
		ViewerPath:      hclCfg.ViewerPath,
		BackupDir:       hclCfg.BackupDir,
		NoteExtension:   hclCfg.NoteExtension,
		Ignore:          hclCfg.Ignore,
		Workers:         hclCfg.Workers,
	}, nil
}

// 💾 Encode writes the config as HCL attributes
func (p *HCLParser) Encode(ctx context.Context, cfg *Config) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("vault_path", cty.StringVal(cfg.VaultPath))
	body.SetAttributeValue("translation_path", cty.StringVal(cfg.TranslationPath))
	body.SetAttributeValue("viewer_path", cty.StringVal(cfg.ViewerPath))
	if cfg.BackupDir != "" {
		body.SetAttributeValue("backup_dir", cty.StringVal(cfg.BackupDir))
	}
	if cfg.NoteExtension != "" {
		body.SetAttributeValue("note_extension", cty.StringVal(cfg.NoteExtension))
	}
	if len(cfg.Ignore) > 0 {
		vals := make([]cty.Value, 0, len(cfg.Ignore))
		for _, pattern := range cfg.Ignore {
			vals = append(vals, cty.StringVal(pattern))
		}
		body.SetAttributeValue("ignore", cty.ListVal(vals))
	}
	if cfg.Workers != 0 {
		body.SetAttributeValue("workers", cty.NumberIntVal(int64(cfg.Workers)))
	}

	return f.Bytes(), nil
}
