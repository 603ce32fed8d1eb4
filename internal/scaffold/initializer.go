package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/filedock/internal/config"
	"github.com/dyluth/filedock/internal/printer"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*
var templatesFS embed.FS

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes a starter filedock.yml into dir.
// If force is true, an existing filedock.yml is replaced.
func Initialize(dir string, force bool) ([]string, error) {
	if force {
		if err := handleForce(dir); err != nil {
			return nil, err
		}
	} else if err := CheckExisting(dir); err != nil {
		return nil, err
	}

	files, err := getTemplateFiles(dir)
	if err != nil {
		return nil, err
	}

	created, err := writeFiles(files)
	if err != nil {
		return nil, err
	}

	if err := validateCreatedFiles(dir); err != nil {
		return nil, err
	}

	return created, nil
}

func handleForce(dir string) error {
	path := filepath.Join(dir, config.DefaultPath)
	if _, err := os.Stat(path); err == nil {
		printer.Warning("Removing existing %s...\n", config.DefaultPath)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", config.DefaultPath, err)
		}
	}
	return nil
}

func getTemplateFiles(dir string) ([]FileInfo, error) {
	content, err := templatesFS.ReadFile("templates/filedock.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read filedock.yml template: %w", err)
	}
	return []FileInfo{{
		Path:        filepath.Join(dir, config.DefaultPath),
		Content:     content,
		Permissions: 0644,
	}}, nil
}

func writeFiles(files []FileInfo) ([]string, error) {
	created := make([]string, 0, len(files))
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
		created = append(created, file.Path)
	}
	return created, nil
}

// validateCreatedFiles checks the written config against the same rules Load
// applies, without environment overrides.
func validateCreatedFiles(dir string) error {
	content, err := os.ReadFile(filepath.Join(dir, config.DefaultPath))
	if err != nil {
		return fmt.Errorf("failed to read created %s: %w", config.DefaultPath, err)
	}

	var cfg config.FiledockConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return fmt.Errorf("created %s is not valid YAML: %w", config.DefaultPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.DefaultPath, err)
	}
	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess(created []string) {
	printer.Println()
	printer.Success("Initialized filedock configuration\n")
	printer.Println("\nCreated:")
	for _, path := range created {
		printer.Printf("  ✓ %s\n", path)
	}
	printer.Println("\nNext steps:")
	printer.Println("  1. Adjust the recognizers and handlers in filedock.yml")
	printer.Println("  2. Run 'filedock order' to check recognizer ordering")
	printer.Println("  3. Run 'filedock open <file>' to dispatch a file")
}
