package config

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"github.com/joho/godotenv"
)

// BuildVariables returns the variables available to ${VAR} expansion: every
// entry of envFiles (later files win) plus each allowed environment variable.
// The process environment wins over env files. An allowed variable that is
// set nowhere is an error.
func BuildVariables(allowedEnv []string, envFiles []string) (map[string]string, error) {
	variables := make(map[string]string)

	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		maps.Copy(variables, values)
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			if _, fromFile := variables[envName]; fromFile {
				continue
			}
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}
