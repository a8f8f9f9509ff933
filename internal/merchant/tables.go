package merchant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tables is the matcher's configuration data: exclusion lists, the generic
// leading-word stoplist, the corporate suffixes stripped during
// normalization, and the static merchant-name → storefront URL map.
// Everything ships with compiled-in defaults and can be overridden from a
// YAML file.
type Tables struct {
	// Exclusions maps a short candidate key to phrases that disqualify it:
	// "express" must not match an input that contains "american express".
	Exclusions map[string][]string `yaml:"exclusions"`
	Stopwords  []string            `yaml:"stopwords"`
	Suffixes   []string            `yaml:"suffixes"`
	// MerchantURLs is the static name → URL lookup table.
	MerchantURLs map[string]string `yaml:"merchant_urls"`
}

// DefaultTables returns the compiled-in matcher data.
func DefaultTables() Tables {
	return Tables{
		Exclusions: map[string][]string{
			"express": {"american express", "panda express"},
			"bell":    {"taco bell"},
			"hut":     {"pizza hut"},
			"gap":     {"gap insurance"},
			"apple":   {"applebees", "apple bees"},
		},
		Stopwords: []string{"the", "shop", "buy", "my", "get"},
		Suffixes: []string{
			"inc", "llc", "ltd", "corp", "corporation", "co",
			"company", "stores", "store", "usa", "online",
		},
		MerchantURLs: map[string]string{
			"amazon":           "https://www.amazon.com",
			"best buy":         "https://www.bestbuy.com",
			"target":           "https://www.target.com",
			"walmart":          "https://www.walmart.com",
			"nike":             "https://www.nike.com",
			"home depot":       "https://www.homedepot.com",
			"lowes":            "https://www.lowes.com",
			"macys":            "https://www.macys.com",
			"nordstrom":        "https://www.nordstrom.com",
			"sephora":          "https://www.sephora.com",
			"staples":          "https://www.staples.com",
			"american express": "https://www.americanexpress.com",
			"express":          "https://www.express.com",
			"pizza hut":        "https://www.pizzahut.com",
			"taco bell":        "https://www.tacobell.com",
		},
	}
}

// LoadTables reads matcher data from a YAML file, filling any omitted
// section from the defaults.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read matcher tables: %w", err)
	}

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("failed to parse matcher tables: %w", err)
	}

	def := DefaultTables()
	if t.Exclusions == nil {
		t.Exclusions = def.Exclusions
	}
	if t.Stopwords == nil {
		t.Stopwords = def.Stopwords
	}
	if t.Suffixes == nil {
		t.Suffixes = def.Suffixes
	}
	if t.MerchantURLs == nil {
		t.MerchantURLs = def.MerchantURLs
	}
	return t, nil
}
