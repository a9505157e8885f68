package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// envVarPattern matches {{ env.VARIABLE_NAME }}
var envVarPattern = regexp.MustCompile(`\{\{\s*env\.(\w+)\s*\}\}`)

var envFiles = []string{".env.local", ".env"}

// SubstituteEnvVars replaces {{ env.NAME }} placeholders with environment
// variable values. A placeholder naming an unset variable is an error.
func SubstituteEnvVars(value string) (string, error) {
	result := value
	seen := make(map[string]bool)

	for _, match := range envVarPattern.FindAllStringSubmatch(value, -1) {
		placeholder, name := match[0], match[1]
		if seen[placeholder] {
			continue
		}
		seen[placeholder] = true

		envValue, ok := os.LookupEnv(name)
		if !ok {
			return "", fmt.Errorf("environment variable '%s' is not set", name)
		}
		result = strings.ReplaceAll(result, placeholder, envValue)
	}

	return result, nil
}

// LoadEnvFiles loads the first .env file found in fromDir, then the working
// directory. Variables already present in the environment are never overwritten.
func LoadEnvFiles(fromDir string) {
	var dirs []string
	if fromDir != "" {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, ".")

	for _, dir := range dirs {
		for _, name := range envFiles {
			if err := godotenv.Load(filepath.Join(dir, name)); err == nil {
				return
			}
		}
	}
}
