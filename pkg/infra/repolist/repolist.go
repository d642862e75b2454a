package repolist

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/binfetch/pkg/domain/model"
)

// DefaultFile is read when no path is given
const DefaultFile = "config.json"

var (
	ErrMissingRepo  = goerr.New("repository entry has no repo field")
	ErrMissingFiles = goerr.New("repository entry has no files field")
)

// entry mirrors one repository object. Pointers tell a missing key from an empty one.
type entry struct {
	Repo  *string   `json:"repo" yaml:"repo" toml:"repo"`
	Files *[]string `json:"files" yaml:"files" toml:"files"`
}

// tomlDocument wraps the list because TOML has no top-level arrays
type tomlDocument struct {
	Repos []entry `toml:"repos"`
}

// Load reads a repository list from path. The format follows the file extension:
// .toml and .yaml/.yml are recognized, anything else is parsed as JSON.
func Load(path string) ([]*model.RepositorySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read repository list", goerr.V("path", path))
	}

	specs, err := Parse(data, Format(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse repository list", goerr.V("path", path))
	}

	return specs, nil
}

// Format returns the list format implied by the extension of path
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Parse decodes a repository list in the given format ("json", "yaml" or "toml")
func Parse(data []byte, format string) ([]*model.RepositorySpec, error) {
	var entries []entry

	switch format {
	case "json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, goerr.Wrap(err, "invalid JSON")
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, goerr.Wrap(err, "invalid YAML")
		}
	case "toml":
		var doc tomlDocument
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, goerr.Wrap(err, "invalid TOML")
		}
		entries = doc.Repos
	default:
		return nil, goerr.New("unsupported repository list format", goerr.V("format", format))
	}

	specs := make([]*model.RepositorySpec, 0, len(entries))
	for i, e := range entries {
		if e.Repo == nil {
			return nil, goerr.Wrap(ErrMissingRepo, "invalid repository entry", goerr.V("index", i))
		}
		if e.Files == nil {
			return nil, goerr.Wrap(ErrMissingFiles, "invalid repository entry",
				goerr.V("index", i),
				goerr.V("repo", *e.Repo),
			)
		}

		specs = append(specs, &model.RepositorySpec{
			Repo:  *e.Repo,
			Files: append([]string{}, (*e.Files)...),
		})
	}

	return specs, nil
}
