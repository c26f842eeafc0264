package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// ParseEnvFile reads KEY=VALUE lines. Blank lines, comments and lines
// without "=" are skipped; an "export " prefix and matching outer quotes
// are dropped.
func ParseEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	vars := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, val, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(key)] = unquote(strings.TrimSpace(val))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return vars, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// mergeEnvFile adds the variables of EnvFile that Env does not set itself.
func (c *Config) mergeEnvFile() error {
	if c.EnvFile == "" {
		return nil
	}
	vars, err := ParseEnvFile(c.EnvFile)
	if err != nil {
		return err
	}
	if c.Env == nil {
		c.Env = make(map[string]string, len(vars))
	}
	for k, v := range vars {
		if _, ok := c.Env[k]; !ok {
			c.Env[k] = v
		}
	}
	return nil
}
