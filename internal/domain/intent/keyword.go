package intent

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"jan-server/services/report-api/internal/domain/report"
)

//go:embed rules.yaml
var defaultRules []byte

type ruleFile struct {
	FieldConfidence float64   `yaml:"fieldConfidence"`
	Rules           []ruleDef `yaml:"rules"`
	Fallback        ruleDef   `yaml:"fallback"`
}

type ruleDef struct {
	Name       string    `yaml:"name"`
	Keywords   []string  `yaml:"keywords"`
	Confidence float64   `yaml:"confidence"`
	Fields     fieldsDef `yaml:"fields"`
	Response   string    `yaml:"response"`
}

type fieldsDef struct {
	Title           string   `yaml:"title"`
	Category        string   `yaml:"category"`
	Department      string   `yaml:"department"`
	EstimatedBudget string   `yaml:"estimatedBudget"`
	Tags            []string `yaml:"tags"`
}

// Rule is a compiled keyword rule.
type Rule struct {
	Name       string
	Keywords   []string
	Confidence float64
	Fields     Fields
	response   *template.Template
}

// RuleSet is an ordered list of rules plus the rule used when none match.
type RuleSet struct {
	FieldConfidence float64
	Rules           []Rule
	Fallback        Rule
}

// DefaultRules returns the embedded rule set.
func DefaultRules() (*RuleSet, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads a rule set from a YAML file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intent rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule set.
func ParseRules(data []byte) (*RuleSet, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode intent rules: %w", err)
	}
	if err := checkConfidence("fieldConfidence", file.FieldConfidence); err != nil {
		return nil, err
	}

	set := &RuleSet{FieldConfidence: file.FieldConfidence}
	for _, def := range file.Rules {
		if len(def.Keywords) == 0 {
			return nil, fmt.Errorf("intent rule %q has no keywords", def.Name)
		}
		rule, err := compileRule(def)
		if err != nil {
			return nil, err
		}
		set.Rules = append(set.Rules, rule)
	}

	fallback, err := compileRule(file.Fallback)
	if err != nil {
		return nil, err
	}
	set.Fallback = fallback
	return set, nil
}

func compileRule(def ruleDef) (Rule, error) {
	if def.Name == "" {
		return Rule{}, fmt.Errorf("intent rule without name")
	}
	if err := checkConfidence("rule "+def.Name, def.Confidence); err != nil {
		return Rule{}, err
	}
	tmpl, err := template.New(def.Name).Option("missingkey=error").Parse(def.Response)
	if err != nil {
		return Rule{}, fmt.Errorf("intent rule %q response: %w", def.Name, err)
	}
	fields, err := def.Fields.compile()
	if err != nil {
		return Rule{}, fmt.Errorf("intent rule %q: %w", def.Name, err)
	}

	keywords := make([]string, 0, len(def.Keywords))
	for _, kw := range def.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return Rule{
		Name:       def.Name,
		Keywords:   keywords,
		Confidence: def.Confidence,
		Fields:     fields,
		response:   tmpl,
	}, nil
}

func (s fieldsDef) compile() (Fields, error) {
	var f Fields
	if s.Title != "" {
		f.Title = &s.Title
	}
	if s.Category != "" {
		category := report.Category(s.Category)
		if !category.IsValid() {
			return Fields{}, fmt.Errorf("unknown category %q", s.Category)
		}
		f.Category = &category
	}
	if s.Department != "" {
		f.Department = &s.Department
	}
	if s.EstimatedBudget != "" {
		budget, err := decimal.NewFromString(s.EstimatedBudget)
		if err != nil {
			return Fields{}, fmt.Errorf("estimatedBudget: %w", err)
		}
		f.EstimatedBudget = &budget
	}
	if len(s.Tags) > 0 {
		f.Tags = append([]string(nil), s.Tags...)
	}
	return f, nil
}

func checkConfidence(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s: confidence %v outside [0,1]", name, v)
	}
	return nil
}

// KeywordClassifier matches lowercased input against keyword rules. It is
// deterministic and never fails for a valid rule set.
type KeywordClassifier struct {
	rules *RuleSet
}

// NewKeywordClassifier creates a classifier over rules.
func NewKeywordClassifier(rules *RuleSet) *KeywordClassifier {
	return &KeywordClassifier{rules: rules}
}

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(_ context.Context, text string) (Result, error) {
	rule := c.match(text)

	var body bytes.Buffer
	if err := rule.response.Execute(&body, struct{ Input string }{Input: text}); err != nil {
		return Result{}, fmt.Errorf("render %s response: %w", rule.Name, err)
	}

	return Result{
		Rule:            rule.Name,
		ResponseText:    body.String(),
		Fields:          rule.Fields.Clone(),
		Confidence:      rule.Confidence,
		FieldConfidence: c.rules.FieldConfidence,
	}, nil
}

func (c *KeywordClassifier) match(text string) *Rule {
	lower := strings.ToLower(text)
	for i := range c.rules.Rules {
		rule := &c.rules.Rules[i]
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule
			}
		}
	}
	return &c.rules.Fallback
}
