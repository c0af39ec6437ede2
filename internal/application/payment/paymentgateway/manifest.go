package paymentgateway

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

// ManifestField is one admin-configurable setting of a gateway.
type ManifestField struct {
	Name        string `yaml:"name" json:"name" validate:"required,max=64"`
	Label       string `yaml:"label" json:"label"`
	Placeholder string `yaml:"placeholder" json:"placeholder,omitempty"`
	Type        string `yaml:"type" json:"type" validate:"required,oneof=text password email number url select textarea checkbox hidden"`
}

type ManifestConfig struct {
	Label string         `yaml:"label" json:"label"`
	Logo  string         `yaml:"logo" json:"logo,omitempty"`
	Extra map[string]any `yaml:"extra" json:"extra,omitempty"`
}

// Manifest declares a gateway to the registry. It is read-only once the
// catalog is built.
type Manifest struct {
	Name                   string          `yaml:"name" json:"name" validate:"required,max=64"`
	DownloadURL            string          `yaml:"download_url" json:"download_url,omitempty" validate:"omitempty,url"`
	Type                   vo.GatewayType  `yaml:"type" json:"type"`
	SupportsFuturePayments bool            `yaml:"supports_future_payments" json:"supports_future_payments"`
	FrontendScript         string          `yaml:"frontend_script" json:"frontend_script,omitempty"`
	FormFile               string          `yaml:"form_file" json:"form_file,omitempty"`
	Class                  string          `yaml:"class" json:"class,omitempty"`
	Config                 ManifestConfig  `yaml:"config" json:"config"`
	IsInstalled            bool            `yaml:"is_installed" json:"is_installed"`
	IsEnabled              bool            `yaml:"is_enabled" json:"is_enabled"`
	Fields                 []ManifestField `yaml:"fields" json:"fields" validate:"dive"`
}

// Validate checks required fields, the gateway type and field uniqueness.
func (m Manifest) Validate() error {
	if err := utils.ValidateStruct(m); err != nil {
		return err
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("manifest %q: type must be %q or %q, got %q",
			m.Name, vo.GatewayTypeOnline, vo.GatewayTypeManual, m.Type)
	}
	seen := make(map[string]struct{}, len(m.Fields))
	for _, f := range m.Fields {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("manifest %q: duplicate field %q", m.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Key is the identity used to match a manifest file to a compiled module.
func (m Manifest) Key() string {
	if m.Class != "" {
		return m.Class
	}
	return m.Name
}

func (m Manifest) clone() Manifest {
	cp := m
	cp.Fields = append([]ManifestField(nil), m.Fields...)
	if m.Config.Extra != nil {
		cp.Config.Extra = make(map[string]any, len(m.Config.Extra))
		for k, v := range m.Config.Extra {
			cp.Config.Extra[k] = v
		}
	}
	return cp
}

// ParseManifest decodes a YAML or JSON manifest document.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}

type manifestFile struct {
	path     string
	manifest Manifest
	err      error
}

// readManifestDir parses every *.yaml, *.yml and *.json file in dir, in
// lexical order. A missing directory yields no files.
func readManifestDir(dir string) ([]manifestFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest dir %s: %w", dir, err)
	}

	var files []manifestFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			files = append(files, manifestFile{path: path, err: err})
			continue
		}
		m, err := ParseManifest(data)
		if err == nil {
			err = m.Validate()
		}
		files = append(files, manifestFile{path: path, manifest: m, err: err})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, nil
}
