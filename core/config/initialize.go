package config

import (
	"log"

	"github.com/spf13/afero"
)

// Initialize sets up a configuration directory with the default config and
// the directories the shell expects, skipping anything that already exists.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	fs := afero.NewBasePathFs(afero.NewOsFs(), dir)

	if exists, err := afero.Exists(fs, ConfigurationName); err != nil {
		return nil, err
	} else if exists {
		logger.Printf("Skipping %q, already exists", ConfigurationName)
	} else {
		logger.Printf("Creating %q", ConfigurationName)
		if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0644); err != nil {
			return nil, err
		}
	}

	if exists, err := afero.DirExists(fs, LogsDirName); err != nil {
		return nil, err
	} else if exists {
		logger.Printf("Skipping %q, already exists", LogsDirName)
	} else {
		logger.Printf("Creating %q", LogsDirName)
		if err := fs.MkdirAll(LogsDirName, 0700); err != nil {
			return nil, err
		}
	}

	return Load(dir)
}
