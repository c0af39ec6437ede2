package paymentgateway

import (
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/config"
	"github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const defaultGatewayTimeout = 15 * time.Second

// ModuleConfig is handed to a module constructor.
type ModuleConfig struct {
	Manifest   Manifest
	Settings   config.GatewayConfig
	HTTPClient *http.Client
	Logger     logger.Interface
}

// Module is a compiled-in gateway implementation with its built-in manifest.
type Module struct {
	Manifest Manifest
	New      func(cfg ModuleConfig) (Gateway, error)
}

// SettingsProvider returns the configured settings for a gateway name.
type SettingsProvider func(name string) config.GatewayConfig

type entry struct {
	manifest Manifest
	gateway  Gateway
}

// catalog is immutable once built; reloads swap a whole new one in.
type catalog struct {
	entries map[string]*entry
	names   []string
}

// Registry resolves gateways by name. It never chooses one implicitly.
type Registry struct {
	current  atomic.Pointer[catalog]
	settings SettingsProvider
	logger   logger.Interface
}

func NewRegistry(settings SettingsProvider, log logger.Interface) *Registry {
	if settings == nil {
		settings = func(string) config.GatewayConfig { return config.GatewayConfig{} }
	}
	r := &Registry{settings: settings, logger: log}
	r.current.Store(&catalog{entries: map[string]*entry{}})
	return r
}

// Discover builds the catalog from compiled modules and the manifest files in
// manifestDir. Malformed manifests are logged and left out; they never abort
// discovery of the others.
func (r *Registry) Discover(modules []Module, manifestDir string) error {
	cat, err := r.build(modules, manifestDir)
	if err != nil {
		return err
	}
	r.current.Store(cat)
	r.logger.Infow("payment gateway catalog loaded", "gateways", cat.names)
	return nil
}

// Reload rebuilds the catalog and replaces the current one atomically.
// Readers holding the old catalog keep a consistent view.
func (r *Registry) Reload(modules []Module, manifestDir string) error {
	return r.Discover(modules, manifestDir)
}

func (r *Registry) build(modules []Module, manifestDir string) (*catalog, error) {
	cat := &catalog{entries: make(map[string]*entry)}
	byKey := make(map[string]Module)

	for _, mod := range modules {
		m := mod.Manifest.clone()
		if err := m.Validate(); err != nil {
			r.logger.Warnw("skipping gateway module with invalid manifest", "name", m.Name, "error", err)
			continue
		}
		if mod.New == nil {
			r.logger.Warnw("skipping gateway module without constructor", "name", m.Name)
			continue
		}
		if _, dup := cat.entries[m.Name]; dup {
			r.logger.Warnw("skipping duplicate gateway module", "name", m.Name)
			continue
		}
		m.IsInstalled = true
		cat.entries[m.Name] = &entry{manifest: m}
		byKey[m.Key()] = mod
		byKey[m.Name] = mod
	}

	if manifestDir != "" {
		files, err := readManifestDir(manifestDir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.err != nil {
				r.logger.Warnw("skipping malformed gateway manifest", "path", f.path, "error", f.err)
				continue
			}
			r.applyManifestFile(cat, byKey, f)
		}
	}

	for name, e := range cat.entries {
		if settings := r.settings(name); settings.Enabled != nil {
			e.manifest.IsEnabled = *settings.Enabled
		}
		if !e.manifest.IsInstalled || !e.manifest.IsEnabled {
			continue
		}
		mod := byKey[e.manifest.Key()]
		gw, err := r.instantiate(mod, e.manifest)
		if err != nil {
			r.logger.Errorw("failed to initialise payment gateway, leaving it disabled", "name", name, "error", err)
			e.manifest.IsEnabled = false
			continue
		}
		e.gateway = gw
	}

	for name := range cat.entries {
		cat.names = append(cat.names, name)
	}
	sort.Strings(cat.names)
	return cat, nil
}

// applyManifestFile overlays a manifest file on the module that implements it,
// or lists it as an available but not installed gateway.
func (r *Registry) applyManifestFile(cat *catalog, byKey map[string]Module, f manifestFile) {
	m := f.manifest.clone()
	mod, ok := byKey[m.Key()]
	if !ok {
		if _, taken := cat.entries[m.Name]; taken {
			r.logger.Warnw("skipping gateway manifest with duplicate name", "path", f.path, "name", m.Name)
			return
		}
		m.IsInstalled = false
		m.IsEnabled = false
		cat.entries[m.Name] = &entry{manifest: m}
		return
	}

	builtin := mod.Manifest
	if m.Name != builtin.Name || m.Type != builtin.Type {
		r.logger.Warnw("skipping gateway manifest that does not match its module",
			"path", f.path, "name", m.Name, "module", builtin.Name)
		return
	}
	m.IsInstalled = true
	cat.entries[m.Name] = &entry{manifest: m}
}

func (r *Registry) instantiate(mod Module, m Manifest) (Gateway, error) {
	settings := r.settings(m.Name)
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	gw, err := mod.New(ModuleConfig{
		Manifest:   m,
		Settings:   settings,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     r.logger.Named("gateway." + m.Name),
	})
	if err != nil {
		return nil, err
	}
	if gw == nil {
		return nil, fmt.Errorf("module %s returned a nil gateway", m.Name)
	}
	return gw, nil
}

// List returns manifests matching filter, ordered by name.
func (r *Registry) List(filter vo.GatewayFilter) []Manifest {
	cat := r.current.Load()
	out := make([]Manifest, 0, len(cat.names))
	for _, name := range cat.names {
		m := cat.entries[name].manifest
		if filter.Matches(m.Type) {
			out = append(out, m.clone())
		}
	}
	return out
}

// Resolve returns the enabled gateway registered under name.
func (r *Registry) Resolve(name string) (Gateway, error) {
	e, ok := r.current.Load().entries[name]
	if !ok || !e.manifest.IsInstalled {
		return nil, errors.NewGatewayNotFoundError(name)
	}
	if !e.manifest.IsEnabled || e.gateway == nil {
		return nil, errors.NewGatewayDisabledError(name)
	}
	return e.gateway, nil
}

func (r *Registry) IsEnabled(name string) bool {
	e, ok := r.current.Load().entries[name]
	return ok && e.manifest.IsEnabled && e.gateway != nil
}

// Manifest returns a copy of the manifest registered under name.
func (r *Registry) Manifest(name string) (Manifest, bool) {
	e, ok := r.current.Load().entries[name]
	if !ok {
		return Manifest{}, false
	}
	return e.manifest.clone(), true
}
