// Package envinspect reports which variables of an env file point at a
// local host port.
package envinspect

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/joho/godotenv"

	"sbwt/internal/rewrite"
)


// Reference is one host:port occurrence inside a variable value.
type Reference struct {
	File  string `json:"file" yaml:"file"`
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
	Host  string `json:"host" yaml:"host"`
	Port  int    `json:"port" yaml:"port"`
}

// PortReferences parses the env file at path and returns every
// host:port reference the env rewriter would touch, ordered by key.
func PortReferences(path string) ([]Reference, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	return referencesIn(path, vars), nil
}

func referencesIn(file string, vars map[string]string) []Reference {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var refs []Reference
	for _, k := range keys {
		v := vars[k]
		for _, m := range rewrite.HostPortPattern.FindAllStringSubmatch(v, -1) {
			port, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			refs = append(refs, Reference{File: file, Key: k, Value: v, Host: m[1], Port: port})
		}
	}
	return refs
}

