package plugins

import (
	"fmt"

	"github.com/dyluth/filedock/internal/config"
	"github.com/dyluth/filedock/internal/filetype"
	"github.com/dyluth/filedock/internal/handler"
	"github.com/dyluth/filedock/internal/workspace"
)

// InstallRecognizers registers the built-in recognizers followed by the ones
// declared in cfg, then computes the priority order.
func InstallRecognizers(reg *filetype.Registry, cfg *config.FiledockConfig) error {
	for _, r := range Recognizers() {
		if err := reg.Register(r); err != nil {
			return fmt.Errorf("failed to register built-in recognizer: %w", err)
		}
	}
	for _, rc := range cfg.Recognizers {
		r, err := FromRecognizerConfig(rc)
		if err != nil {
			return err
		}
		if err := reg.Register(r); err != nil {
			return fmt.Errorf("failed to register recognizer '%s': %w", rc.ID, err)
		}
	}
	reg.ComputeOrder()
	return nil
}

// InstallHandlers registers the handlers declared in cfg, which take priority,
// followed by the built-ins they don't replace.
func InstallHandlers(cat *handler.Catalog, cfg *config.FiledockConfig) error {
	declared := make(map[string]bool, len(cfg.Handlers))
	for _, hc := range cfg.Handlers {
		if err := cat.Register(FromHandlerConfig(hc)); err != nil {
			return err
		}
		declared[hc.ID] = true
	}
	for _, d := range Handlers() {
		if declared[d.ID] {
			continue
		}
		if err := cat.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// FromRecognizerConfig builds a magic-number recognizer from its declaration.
func FromRecognizerConfig(rc config.RecognizerConfig) (filetype.Recognizer, error) {
	sig, err := rc.Signature()
	if err != nil {
		return filetype.Recognizer{}, err
	}
	return filetype.Recognizer{
		ID:         rc.ID,
		Before:     rc.Before,
		After:      rc.After,
		Wildcard:   rc.Wildcard,
		Identifier: filetype.Magic{MIME: rc.MIME, Offset: rc.Offset, Signature: sig},
	}, nil
}

// FromHandlerConfig builds a descriptor from its declaration.
func FromHandlerConfig(hc config.HandlerConfig) handler.Descriptor {
	d := handler.Descriptor{
		ID:      hc.ID,
		Name:    hc.Name,
		CanEdit: handler.MatchMIME(hc.MIME...),
	}
	if hc.DenyAlternates {
		d.AllowAlternate = handler.DenyAlternates
	}
	return d
}

// StartupTask returns the factory for the task given to windows opened empty,
// or nil when id is empty.
func StartupTask(cat *handler.Catalog, id string) (func() *workspace.Task, error) {
	if id == "" {
		return nil, nil
	}
	d, ok := cat.Get(id)
	if !ok {
		return nil, fmt.Errorf("startup_handler '%s' is not a registered handler", id)
	}
	return d.NewTask, nil
}
