package lexicon

import (
	"encoding/json"
	"os"
	"strings"

	"go.uber.org/zap"
)

type catalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type catalogFile struct {
	Accounts []catalogEntry `json:"accounts"`
}

// LoadCatalog builds the product-id to display-name map from the knowledge
// file. Degrades to an empty map when the path is not a JSON file, is
// missing, or does not parse. A broken catalog must never stop the service;
// the resolver falls back to title-cased keys.
func LoadCatalog(path string, log *zap.Logger) map[string]string {
	names := map[string]string{}
	if !strings.HasSuffix(strings.ToLower(path), ".json") {
		return names
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Product catalog unavailable", zap.String("path", path), zap.Error(err))
		return names
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Warn("Product catalog malformed", zap.String("path", path), zap.Error(err))
		return names
	}

	for _, entry := range file.Accounts {
		if entry.ID != "" && entry.Name != "" {
			names[entry.ID] = entry.Name
		}
	}

	log.Info("Product catalog loaded", zap.String("path", path), zap.Int("products", len(names)))
	return names
}
