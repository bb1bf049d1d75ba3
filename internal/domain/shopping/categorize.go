package shopping

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is the closed set of shopping aisles.
type Category string

const (
	CategoryFruitsVegetables Category = "fruits_vegetables"
	CategoryProteins         Category = "proteins"
	CategoryDairy            Category = "dairy"
	CategoryGrains           Category = "grains"
	CategoryCondiments       Category = "condiments"
	CategoryBeverages        Category = "beverages"
	CategoryFrozen           Category = "frozen"
	CategoryBakery           Category = "bakery"
	CategoryOther            Category = "other"
)

// ErrUnknownCategory is returned for names outside the closed set.
var ErrUnknownCategory = errors.New("unknown category")

var categories = map[Category]bool{
	CategoryFruitsVegetables: true,
	CategoryProteins:         true,
	CategoryDairy:            true,
	CategoryGrains:           true,
	CategoryCondiments:       true,
	CategoryBeverages:        true,
	CategoryFrozen:           true,
	CategoryBakery:           true,
	CategoryOther:            true,
}

// ParseCategory validates a category name. Empty input maps to other.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryOther, nil
	}
	if !categories[c] {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Rule maps a keyword pattern onto a category.
type Rule struct {
	Category Category
	Pattern  *regexp.Regexp
}

// KeywordRule builds a rule matching any keyword as a whole word, with an
// optional plural s or x.
func KeywordRule(c Category, keywords ...string) Rule {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	expr := `(?:^|[^\p{L}])(?:` + strings.Join(quoted, "|") + `)[sx]?(?:[^\p{L}]|$)`
	return Rule{Category: c, Pattern: regexp.MustCompile(expr)}
}

// The vocabulary is French first; names outside it land in other.
var defaultRules = []Rule{
	KeywordRule(CategoryFruitsVegetables,
		"pomme", "banane", "orange", "citron", "fraise", "framboise", "myrtille", "mangue", "ananas",
		"kiwi", "poire", "pêche", "raisin", "avocat", "tomate", "carotte", "courgette", "aubergine",
		"poivron", "oignon", "échalote", "ail", "épinard", "brocoli", "chou", "salade", "laitue",
		"roquette", "concombre", "champignon", "haricot vert", "haricots verts", "petits pois",
		"patate douce", "poireau", "céleri", "fenouil", "betterave", "persil", "basilic", "coriandre",
		"menthe", "gingembre", "légume", "fruit", "apple", "banana", "tomato", "onion", "garlic", "spinach"),
	KeywordRule(CategoryProteins,
		"poulet", "dinde", "bœuf", "boeuf", "veau", "porc", "agneau", "jambon", "saumon", "thon",
		"cabillaud", "crevette", "poisson", "œuf", "oeuf", "tofu", "tempeh", "lentille", "pois chiche",
		"steak", "viande", "volaille", "chicken", "beef", "egg", "salmon"),
	KeywordRule(CategoryDairy,
		"lait", "yaourt", "yogourt", "fromage", "beurre", "crème", "feta", "mozzarella", "parmesan",
		"ricotta", "skyr", "cottage", "emmental", "chèvre", "milk", "cheese", "yogurt"),
	KeywordRule(CategoryGrains,
		"riz", "pâte", "pâtes", "quinoa", "avoine", "flocons d'avoine", "semoule", "boulgour", "blé",
		"farine", "muesli", "granola", "couscous", "sarrasin", "orge", "maïs", "polenta", "rice", "oats", "pasta"),
	KeywordRule(CategoryCondiments,
		"sel", "poivre", "huile", "vinaigre", "moutarde", "sauce", "épice", "cumin", "curry", "paprika",
		"cannelle", "herbes", "miel", "sirop", "ketchup", "mayonnaise", "soja", "tahini", "pesto", "bouillon"),
	KeywordRule(CategoryBeverages,
		"eau", "café", "thé", "jus", "boisson", "smoothie", "vin", "bière", "water", "coffee", "tea", "juice"),
	KeywordRule(CategoryFrozen,
		"surgelé", "surgelés", "congelé", "glace", "frozen"),
	KeywordRule(CategoryBakery,
		"pain", "baguette", "brioche", "croissant", "tortilla", "wrap", "biscotte", "galette", "bread"),
}

// Categorizer assigns categories from an ordered rule table. The first
// matching rule wins.
type Categorizer struct {
	rules []Rule
}

// NewCategorizer returns a categorizer evaluating extra rules before the
// built-in table.
func NewCategorizer(extra ...Rule) *Categorizer {
	rules := make([]Rule, 0, len(extra)+len(defaultRules))
	rules = append(rules, extra...)
	rules = append(rules, defaultRules...)
	return &Categorizer{rules: rules}
}

// Categorize returns the category of an ingredient name, or other.
func (c *Categorizer) Categorize(name string) Category {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return CategoryOther
	}
	for _, r := range c.rules {
		if r.Pattern.MatchString(lower) {
			return r.Category
		}
	}
	return CategoryOther
}

var defaultCategorizer = NewCategorizer()

// Categorize uses the built-in rule table.
func Categorize(name string) Category {
	return defaultCategorizer.Categorize(name)
}

type ruleFile struct {
	Rules []struct {
		Category string   `yaml:"category"`
		Keywords []string `yaml:"keywords"`
	} `yaml:"rules"`
}

// LoadRules reads extra rules from YAML:
//
//	rules:
//	  - category: proteins
//	    keywords: [seitan, falafel]
func LoadRules(r io.Reader) ([]Rule, error) {
	var file ruleFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode category rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, entry := range file.Rules {
		c, err := ParseCategory(entry.Category)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if len(entry.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d: no keywords", i)
		}
		rules = append(rules, KeywordRule(c, entry.Keywords...))
	}
	return rules, nil
}
