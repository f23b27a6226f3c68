package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jan-server/services/report-api/internal/domain/intent"
)

func newRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Intent rule commands",
	}
	rulesCmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Validate an intent rules file, or the embedded rules without a file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRulesValidate,
	})
	return rulesCmd
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	rules, err := loadRules(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rule := range rules.Rules {
		fmt.Fprintf(out, "  %-16s %-15s confidence=%.2f keywords=%s\n",
			rule.Name, categoryOf(rule), rule.Confidence, strings.Join(rule.Keywords, ","))
	}
	fmt.Fprintf(out, "  %-16s %-15s confidence=%.2f\n", rules.Fallback.Name, categoryOf(rules.Fallback), rules.Fallback.Confidence)
	fmt.Fprintln(out, "rules are valid")
	return nil
}

func categoryOf(rule intent.Rule) string {
	if rule.Fields.Category == nil {
		return "-"
	}
	return string(*rule.Fields.Category)
}

func newClassifyCmd() *cobra.Command {
	classifyCmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify a message offline and print the extraction",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runClassify,
	}
	classifyCmd.Flags().String("rules", "", "Intent rules file (default: embedded rules)")
	return classifyCmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("rules")
	rules, err := loadRules(path)
	if err != nil {
		return err
	}

	result, err := intent.NewKeywordClassifier(rules).Classify(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		intent.Result
		SuggestedFields []intent.SuggestedField `json:"suggestedFields"`
	}{result, result.SuggestedFields()})
}

func loadRules(path string) (*intent.RuleSet, error) {
	if path == "" {
		return intent.DefaultRules()
	}
	return intent.LoadRules(path)
}
