package statepaths

import (
	"github.com/junggyeol4444/aiu/internal/pathutil"
	"github.com/spf13/viper"
)

const (
	TranscriptFilename = "aiu.sqlite"
	ConfigFilename     = "config.yaml"
	PersonaFilename    = "persona.json"
)

func FileStateDir() string {
	return pathutil.ResolveStateDir(viper.GetString("file_state_dir"))
}

func TranscriptPath() string {
	configured := viper.GetString("transcript.path")
	if configured != "" {
		return pathutil.ExpandHomePath(configured)
	}
	return pathutil.ResolveStateFile(viper.GetString("file_state_dir"), TranscriptFilename)
}

func ConfigPath() string {
	return pathutil.ResolveStateFile(viper.GetString("file_state_dir"), ConfigFilename)
}

func DumpDir() string {
	return pathutil.ResolveStateChildDir(viper.GetString("file_state_dir"), "", "dump")
}

func PersonaPath() string {
	return pathutil.ResolveStateFile(viper.GetString("file_state_dir"), PersonaFilename)
}
